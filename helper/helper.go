// Package helper runs external helpers with optional sandboxing.
package helper

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"firelock.dev/launcher/helper/proc"
)

var (
	WaitDelay = 2 * time.Second
)

const (
	// LauncherHelper is set to 1 when args fd is enabled and 0 otherwise.
	LauncherHelper = "LAUNCHER_HELPER"
	// LauncherStatus is set to 1 when stat fd is enabled and 0 otherwise.
	LauncherStatus = "LAUNCHER_STATUS"
)

// Helper wraps a child process communicating over an optional argument pipe
// and an optional one-byte status pipe.
type Helper interface {
	// Start starts the helper process.
	Start() error
	// Wait blocks until Helper exits.
	Wait() error
	// Unwrap returns the underlying [exec.Cmd].
	Unwrap() *exec.Cmd
	// StatFd returns the read end of the one-byte status pipe fulfilled by
	// Start, and whether a status pipe was requested at all. The returned
	// file is only meaningful once Start has returned successfully; the
	// Helper itself never closes it, so ownership passes to the caller.
	StatFd() (*os.File, bool)

	fmt.Stringer
}

// newHelperFiles prepares the deferred argument/status pipe state shared by every
// [Helper] implementation and returns the positional arguments to append to the
// helper's argv (e.g. "--args FD" style toggles produced by argF).
func newHelperFiles(
	ctx context.Context,
	wt io.WriterTo, stat bool,
	argF func(argsFd, statFd int) []string,
	extraFiles []*os.File,
) (h *helperFiles, args []string) {
	h = &helperFiles{ctx: ctx, useStatFd: stat}

	h.extraFiles = new(proc.ExtraFilesPre)
	for _, f := range extraFiles {
		_, v := h.extraFiles.Append()
		*v = f
	}

	argsFd := -1
	if wt != nil {
		f := proc.NewWriterTo(wt)
		argsFd = int(proc.InitFile(f, h.extraFiles))
		h.files = append(h.files, f)
		h.useArgsFd = true
	}

	statFd := -1
	if stat {
		f := proc.NewStat(&h.stat)
		statFd = int(proc.InitFile(f, h.extraFiles))
		h.files = append(h.files, f)
	}

	args = argF(argsFd, statFd)
	return
}

// helperFiles holds the pipe bookkeeping shared across the [exec.Cmd]-backed
// and directly-executed Helper implementations.
type helperFiles struct {
	useArgsFd bool
	useStatFd bool

	// closes statFd
	stat io.Closer
	// deferred extraFiles fulfillment
	files []proc.File
	// passed through to [proc.Fulfill] and [proc.InitFile]
	extraFiles *proc.ExtraFilesPre

	ctx context.Context
}

func (h *helperFiles) String() string {
	if h == nil {
		return "(invalid helper)"
	}
	return "helper"
}
