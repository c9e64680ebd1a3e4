//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels the returned context on interrupt. SIGTERM and
// SIGHUP never arrive on Windows, so Ctrl-C is the only way to wind
// down watch, serve, and the container commands.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
