package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
)

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		appLog.Error("lifecal failed", err)
		stop()
		os.Exit(1)
	}
}
