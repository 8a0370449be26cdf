// Command reqshape validates JSON documents against request shapes, converts
// shape declarations between formats, and serves the procurement API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		code := exitCodeFromError(err)
		if code != ExitRejected {
			fmt.Fprintf(os.Stderr, "reqshape: %v\n", err)
		}
		return code
	}
	return ExitSuccess
}
