//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyContext cancels the returned context on interrupt, termination,
// or hangup. Hangup matters for the long-running commands (watch, serve,
// jupyter): a dropped terminal should wind them down like Ctrl-C does.
// The current child process is killed through exec.CommandContext.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}
