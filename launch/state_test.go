package launch

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"firelock.dev/launcher/helper"
)

// fakeHelper satisfies helper.Helper with a *exec.Cmd whose Process field
// names a real, already-running process (the test binary itself) without
// ever starting or signalling anything new.
type fakeHelper struct {
	cmd *exec.Cmd
}

func newFakeHelper(t *testing.T, pid int) *fakeHelper {
	proc, err := os.FindProcess(pid)
	if err != nil {
		t.Fatalf("FindProcess(%d): %v", pid, err)
	}
	cmd := &exec.Cmd{Process: proc}
	return &fakeHelper{cmd: cmd}
}

func (f *fakeHelper) Start() error                 { return nil }
func (f *fakeHelper) Wait() error                   { return nil }
func (f *fakeHelper) Unwrap() *exec.Cmd             { return f.cmd }
func (f *fakeHelper) StatFd() (*os.File, bool)      { return nil, false }
func (f *fakeHelper) String() string                { return "fakeHelper" }

var _ helper.Helper = (*fakeHelper)(nil)

func TestTrackListUntrack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	in := &Instance{AppID: "org.example.App", h: newFakeHelper(t, os.Getpid())}

	if err := Track(dir, in, "org.example.App"); err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	records, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List() = %v, want 1 record", records)
	}
	if records[0].AppID != "org.example.App" || records[0].Pid != os.Getpid() {
		t.Errorf("List()[0] = %+v, want AppID org.example.App Pid %d", records[0], os.Getpid())
	}

	if err := Untrack(dir, in); err != nil {
		t.Fatalf("Untrack() error = %v", err)
	}

	records, err = List(dir)
	if err != nil {
		t.Fatalf("List() after Untrack error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() after Untrack = %v, want empty", records)
	}
}

func TestListPrunesDeadProcesses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	// pid 1 is almost always alive in a container/VM, so pick an
	// unreasonably large pid Linux will never actually assign.
	const deadPid = 1 << 30

	store := newRecordStore(dir)
	if err := store.withLock(func(records []Record) []Record {
		return append(records, Record{AppID: "org.example.Dead", Pid: deadPid})
	}); err != nil {
		t.Fatalf("seed withLock() error = %v", err)
	}

	records, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() = %v, want dead record pruned", records)
	}
}

func TestKillSignalsMatchingLiveRecordsOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	in := &Instance{AppID: "org.example.App", h: newFakeHelper(t, os.Getpid())}
	if err := Track(dir, in, "org.example.App"); err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	// Signal 0 only probes for existence; it never actually delivers a
	// signal, so this is safe to run against the test process itself.
	n, err := Kill(dir, "org.example.App", syscall.Signal(0))
	if err != nil {
		t.Fatalf("Kill() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Kill() signalled %d processes, want 1", n)
	}

	n, err = Kill(dir, "org.example.NoSuchApp", syscall.Signal(0))
	if err != nil {
		t.Fatalf("Kill() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Kill() of unknown app id signalled %d processes, want 0", n)
	}
}

func TestStateDirIsRootedUnderRunDir(t *testing.T) {
	got := StateDir("/run/user/1000")
	want := "/run/user/1000/launcher/state"
	if got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
}
