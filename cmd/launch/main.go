package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	hcontainer "firelock.dev/launcher/container"
	"firelock.dev/launcher/internal/hlog"
	"firelock.dev/launcher/internal/sys"
)

var errSuccess = errors.New("success")

func main() {
	hlog.Prepare("launch")
	hcontainer.SetOutput(hlog.Output{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	std := &sys.Std{}
	c := buildCommand(ctx, std, os.Stderr)

	if err := c.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, errSuccess) {
			hlog.BeforeExit()
			os.Exit(0)
		}
		log.SetPrefix("launch: ")
		log.SetFlags(0)
		log.Fatal(err)
	}
	hlog.BeforeExit()
}
