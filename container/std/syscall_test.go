package std

import "testing"

func TestSyscallResolveNameKnown(t *testing.T) {
	for _, name := range []string{"mount", "clone", "ioctl", "socket", "personality"} {
		if _, ok := SyscallResolveName(name); !ok {
			t.Errorf("SyscallResolveName(%q) = not ok, want a resolved number", name)
		}
	}
}

func TestSyscallResolveNameUnknown(t *testing.T) {
	if _, ok := SyscallResolveName("definitely_not_a_syscall"); ok {
		t.Error("SyscallResolveName resolved a nonexistent name")
	}
}

func TestSyscallsIteratesAll(t *testing.T) {
	count := 0
	for range Syscalls() {
		count++
	}
	if count != len(syscallNum) {
		t.Errorf("Syscalls iterated %d entries, want %d", count, len(syscallNum))
	}
}

func TestScmpSyscallJSONRoundTrip(t *testing.T) {
	num, ok := SyscallResolveName("mount")
	if !ok {
		t.Fatal("mount unresolved on this architecture")
	}

	data, err := num.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var got ScmpSyscall
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got != num {
		t.Errorf("round trip = %d, want %d", got, num)
	}
}

func TestScmpSyscallUnmarshalInvalidName(t *testing.T) {
	var num ScmpSyscall
	err := num.UnmarshalJSON([]byte(`"definitely_not_a_syscall"`))
	if _, ok := err.(SyscallNameError); !ok {
		t.Errorf("UnmarshalJSON error = %v (%T), want SyscallNameError", err, err)
	}
}
