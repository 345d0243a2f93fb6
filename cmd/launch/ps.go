package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"firelock.dev/launcher/internal/sys"
	"firelock.dev/launcher/launch"
)

func runPs(std sys.State, out io.Writer) error {
	dir := launch.StateDir(std.Paths().RunDirPath)
	records, err := launch.List(dir)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 1, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "APP ID\tPID\tCOMMAND\tAGE")
	now := time.Now()
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.AppID, r.Pid, r.Command, now.Sub(r.StartedAt).Round(time.Second))
	}
	return tw.Flush()
}

func runKill(std sys.State, appID string) error {
	if appID == "" {
		return fmt.Errorf("launch kill: missing APP-ID")
	}
	dir := launch.StateDir(std.Paths().RunDirPath)
	n, err := launch.Kill(dir, appID, nil)
	if err != nil {
		return err
	}
	if n == 0 {
		_, _ = fmt.Fprintf(os.Stderr, "launch kill: no running instance of %s\n", appID)
	}
	return nil
}
