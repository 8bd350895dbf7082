// cmd/sitecfg/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sitecfg/cmd/sitecfg/commands"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
