package seccomp

import (
	"testing"

	"firelock.dev/launcher/container/std"
)

func TestPresetGroupedBySyscall(t *testing.T) {
	rules := Preset(PersonaLinux, false)
	seen := make(map[std.ScmpSyscall]bool)
	for i, r := range rules {
		if i > 0 && rules[i-1].Syscall == r.Syscall {
			continue
		}
		if seen[r.Syscall] {
			t.Fatalf("syscall %d appears in two non-contiguous runs", r.Syscall)
		}
		seen[r.Syscall] = true
	}
}

func TestPresetSocketFamilyBlacklist(t *testing.T) {
	rules := Preset(PersonaLinux, false)
	nr, ok := std.SyscallResolveName("socket")
	if !ok {
		t.Fatal("socket unresolved on this architecture")
	}

	var count int
	for _, r := range rules {
		if r.Syscall != nr {
			continue
		}
		count++
		if r.Arg == nil {
			t.Fatal("socket rule without an argument comparison")
		}
		if r.Arg.Arg != 0 {
			t.Fatalf("socket rule compares arg %d, want 0 (family)", r.Arg.Arg)
		}
	}
	if count != len(denySocketFamilies)+1 {
		t.Fatalf("got %d socket rules, want %d", count, len(denySocketFamilies)+1)
	}
}

func TestPresetPersonalityUsesRequestedDomain(t *testing.T) {
	rules := Preset(PersonaLinux32, false)
	nr, ok := std.SyscallResolveName("personality")
	if !ok {
		t.Fatal("personality unresolved on this architecture")
	}
	for _, r := range rules {
		if r.Syscall != nr {
			continue
		}
		if r.Arg == nil || r.Arg.Op != std.ScmpCmpNE || r.Arg.DatumA != PersonaLinux32 {
			t.Fatalf("personality rule = %+v, want NE against PersonaLinux32", r.Arg)
		}
		return
	}
	t.Fatal("no personality rule emitted")
}
