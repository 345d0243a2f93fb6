package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	hcontainer "firelock.dev/launcher/container"
	permctx "firelock.dev/launcher/context"
	"firelock.dev/launcher/internal/hlog"
	"firelock.dev/launcher/internal/sys"
	"firelock.dev/launcher/launch"
)

// runUsage documents the "launch run" leaf's own flag surface, since its
// arguments bypass the command tree's flag.FlagSet entirely (see
// cmd/launch/command.go) and are parsed with pflag instead.
const runUsage = `Usage: launch run [OPTIONS] [CONTEXT-FLAGS...] -- COMMAND [ARGS...]

OPTIONS:
  --app-id string          reverse-DNS application identifier (required)
  --branch string          application branch
  --runtime-path string    host path of the mounted runtime tree (required)
  --runtime-ref string     runtime ref recorded in app info
  --runtime-commit string  runtime commit recorded in app info
  --app-path string        host path of the mounted app tree (omit for a bare runtime launch)
  --app-commit string      app commit recorded in app info
  --no-file-forwarding     disable "@@"/"@@u" argument rewriting

CONTEXT-FLAGS:
  any flag accepted by context.ParseCLIArgs, e.g. --share=network
  --socket=wayland --filesystem=home --talk-name=org.freedesktop.Notifications
`

// splitContextArgs separates the leading run of "--"-prefixed permission
// context tokens (e.g. "--share=network") from the sandboxed command and
// its own arguments. This is a pragmatic heuristic, not a grammar
// dictated by anything the launcher core itself must agree on: the CLI
// surface it serves has no external contract to honor.
func splitContextArgs(args []string) (contextArgs, rest []string) {
	for i, a := range args {
		if strings.HasPrefix(a, "--") {
			contextArgs = append(contextArgs, a)
			continue
		}
		return contextArgs, args[i:]
	}
	return contextArgs, nil
}

func runRun(ctx context.Context, std sys.State, args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() { fmt.Fprint(os.Stderr, runUsage) }

	var (
		appID, branch                       string
		runtimePath, runtimeRef, runtimeCmt string
		appPath, appCmt                     string
		noForward                           bool
	)
	fs.StringVar(&appID, "app-id", "", "application id")
	fs.StringVar(&branch, "branch", "master", "application branch")
	fs.StringVar(&runtimePath, "runtime-path", "", "host path of the runtime tree")
	fs.StringVar(&runtimeRef, "runtime-ref", "", "runtime ref")
	fs.StringVar(&runtimeCmt, "runtime-commit", "", "runtime commit")
	fs.StringVar(&appPath, "app-path", "", "host path of the app tree")
	fs.StringVar(&appCmt, "app-commit", "", "app commit")
	fs.BoolVar(&noForward, "no-file-forwarding", false, "disable argument file-forwarding")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if appID == "" || runtimePath == "" {
		fs.Usage()
		return fmt.Errorf("launch run: --app-id and --runtime-path are required")
	}

	contextArgs, rest := splitContextArgs(fs.Args())
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("launch run: missing COMMAND")
	}

	extra, err := permctx.ParseCLIArgs(contextArgs)
	if err != nil {
		return fmt.Errorf("launch run: parse context flags: %w", err)
	}

	l, err := launch.NewLauncher(std, hcontainer.GetOutput())
	if err != nil {
		return err
	}

	opt := &launch.Options{
		Deploy: launch.Deploy{
			AppID: appID, Branch: branch,
			RuntimePath: runtimePath, RuntimeRef: runtimeRef, RuntimeCommit: runtimeCmt,
			AppPath: appPath, AppCommit: appCmt,
			Command: rest[0], CommandArgs: rest[1:],
			FileForwarding: !noForward,
		},
		Contexts:        []*permctx.Context{extra},
		LauncherVersion: versionString(),
	}

	in, err := l.Launch(ctx, opt)
	if err != nil {
		return err
	}

	dir := launch.StateDir(std.Paths().RunDirPath)
	if err := launch.Track(dir, in, opt.Deploy.Command); err != nil {
		hlog.Verbosef("launch run: track instance: %v", err)
	}
	defer func() {
		if err := launch.Untrack(dir, in); err != nil {
			hlog.Verbosef("launch run: untrack instance: %v", err)
		}
	}()

	return in.Wait()
}
