package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-lvs/cmd/lvs/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(code)
}
