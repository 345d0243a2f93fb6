package launch

import (
	"encoding/json"
	"os"
	"path"
	"time"

	"golang.org/x/sys/unix"
)

// Record describes one running launch as persisted to the state
// directory, the data "launch ps" reads back and "launch kill" acts on.
type Record struct {
	AppID     string    `json:"app_id"`
	Pid       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

// stateFileName is fixed: one file per running user holds every
// concurrently tracked launch, keyed by pid.
const stateFileName = "launches.json"

// StateDir returns the directory launch records live under, rooted at
// the caller's runtime directory.
func StateDir(runDirPath string) string { return path.Join(runDirPath, "launcher", "state") }

// recordStore guards the on-disk registry with an flock, so concurrent
// "launch run"/"launch ps"/"launch kill" invocations never race each
// other's read-modify-write of the shared file.
type recordStore struct{ dir string }

func newRecordStore(dir string) *recordStore { return &recordStore{dir: dir} }

func (s *recordStore) path() string { return path.Join(s.dir, stateFileName) }

// withLock opens (creating if absent) the registry file, takes an
// exclusive flock for the duration of f, and persists whatever f leaves
// in the slice it's handed back.
func (s *recordStore) withLock(f func(records []Record) []Record) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return IoError{Op: "mkdir", Path: s.dir, Err: err}
	}

	file, err := os.OpenFile(s.path(), os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return IoError{Op: "open", Path: s.path(), Err: err}
	}
	defer func() { _ = file.Close() }()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return IoError{Op: "flock", Path: s.path(), Err: err}
	}
	defer func() { _ = unix.Flock(int(file.Fd()), unix.LOCK_UN) }()

	var records []Record
	if st, err := file.Stat(); err == nil && st.Size() > 0 {
		if err := json.NewDecoder(file).Decode(&records); err != nil {
			return IoError{Op: "decode", Path: s.path(), Err: err}
		}
	}

	records = f(records)

	if err := file.Truncate(0); err != nil {
		return IoError{Op: "truncate", Path: s.path(), Err: err}
	}
	if _, err := file.Seek(0, 0); err != nil {
		return IoError{Op: "seek", Path: s.path(), Err: err}
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return IoError{Op: "encode", Path: s.path(), Err: err}
	}
	return nil
}

// Track registers in's pid against the state directory dir, so a later
// "launch ps"/"launch kill" invocation (possibly from a different
// process) can find it. Callers normally pair this with a deferred
// Untrack once in.Wait returns.
func Track(dir string, in *Instance, command string) error {
	cmd := in.Unwrap().Unwrap()
	if cmd == nil || cmd.Process == nil {
		return DeployError{Msg: "launch: instance has no process to track"}
	}
	rec := Record{AppID: in.AppID, Pid: cmd.Process.Pid, Command: command, StartedAt: time.Now()}

	return newRecordStore(dir).withLock(func(records []Record) []Record {
		return append(records, rec)
	})
}

// Untrack removes in's record from the state directory, e.g. once its
// process has exited.
func Untrack(dir string, in *Instance) error {
	cmd := in.Unwrap().Unwrap()
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid

	return newRecordStore(dir).withLock(func(records []Record) []Record {
		out := records[:0]
		for _, r := range records {
			if r.Pid != pid {
				out = append(out, r)
			}
		}
		return out
	})
}

// List returns every launch currently tracked against dir, pruning
// records whose pid no longer exists as it goes.
func List(dir string) ([]Record, error) {
	var live []Record
	err := newRecordStore(dir).withLock(func(records []Record) []Record {
		live = make([]Record, 0, len(records))
		for _, r := range records {
			if processAlive(r.Pid) {
				live = append(live, r)
			}
		}
		return live
	})
	return live, err
}

// Kill signals every tracked instance of appID with sig (SIGTERM if sig
// is nil), returning the number of processes actually signalled.
func Kill(dir, appID string, sig os.Signal) (int, error) {
	if sig == nil {
		sig = unix.SIGTERM
	}
	n := 0
	err := newRecordStore(dir).withLock(func(records []Record) []Record {
		for _, r := range records {
			if r.AppID != appID || !processAlive(r.Pid) {
				continue
			}
			if proc, err := os.FindProcess(r.Pid); err == nil {
				if proc.Signal(sig) == nil {
					n++
				}
			}
		}
		return records
	})
	return n, err
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}
