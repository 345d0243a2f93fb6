package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"firelock.dev/launcher/command"
	"firelock.dev/launcher/internal/hlog"
	"firelock.dev/launcher/internal/sys"
)

func buildCommand(ctx context.Context, std sys.State, out io.Writer) command.Command {
	var flagVerbose bool

	c := command.New(out, log.Printf, "launch", func([]string) error { hlog.Store(flagVerbose); return nil }).
		Flag(&flagVerbose, "v", command.BoolFlag(false), "increase log verbosity")

	c.CommandRaw("run", "launch a sandboxed application", func(args []string) error {
		return runRun(ctx, std, args)
	})

	c.Command("ps", "list running sandboxed instances", func([]string) error {
		return runPs(std, os.Stdout)
	})

	c.Command("kill", "terminate a running sandboxed instance", func(args []string) error {
		if len(args) < 1 {
			return fmt.Errorf("launch kill: requires 1 argument, the application id")
		}
		return runKill(std, args[0])
	})

	c.Command("version", "display version information", func([]string) error {
		fmt.Fprintln(out, versionString())
		return errSuccess
	})

	c.Command("help", "show this help message", func([]string) error {
		c.PrintHelp()
		return errSuccess
	})

	return c
}
