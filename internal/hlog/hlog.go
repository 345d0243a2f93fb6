// Package hlog provides the launcher's structured logging output, backed by
// logrus, with support for suspending host log output while a sandboxed
// process holds the controlling terminal.
package hlog

import (
	"os"

	"github.com/sirupsen/logrus"

	"firelock.dev/launcher/container"
)

var o = &container.Suspendable{Downstream: os.Stderr}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(o)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		FullTimestamp:    false,
	})
	return l
}

// Prepare sets the prefix included with every subsequent log entry.
func Prepare(prefix string) {
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	cmdPrefix = prefix
}

var cmdPrefix string

func withPrefix() *logrus.Entry {
	if cmdPrefix == "" {
		return logrus.NewEntry(logger)
	}
	return logger.WithField("cmd", cmdPrefix)
}

// Suspend withholds log output until the matching Resume.
func Suspend() bool { return o.Suspend() }

// Resume undoes Suspend, flushing anything buffered while suspended.
func Resume() bool {
	resumed, dropped, _, err := o.Resume()
	if err != nil {
		withPrefix().Errorf("cannot dump buffer on resume: %v", err)
	}
	if resumed && dropped > 0 {
		withPrefix().Fatalf("dropped %d bytes while output is suspended", dropped)
	}
	return resumed
}

// BeforeExit resumes suspended output before process exit, matching
// [container.Msg.BeforeExit].
func BeforeExit() {
	if Resume() {
		withPrefix().Warn("beforeExit reached on suspended output")
	}
}
