package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dobrovols/depctl/internal/cli"
	telemetryinit "github.com/dobrovols/depctl/internal/telemetry"
	pkgconfig "github.com/dobrovols/depctl/pkg/config"
)

var (
	telemetryInit = telemetryinit.InitProvider
	rootCommand   = cli.NewRootCommand
	osExit        = os.Exit
)

func main() {
	ctx := context.Background()
	shutdown, err := telemetryInit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
	}
	if shutdown != nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, telemetryinit.ShutdownTimeout)
		defer func() {
			defer cancel()
			if err := shutdown(cleanupCtx); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry shutdown error: %v\n", err)
			}
		}()
	}

	cmd := rootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		var conflictErr *pkgconfig.ConflictError
		if errors.As(err, &conflictErr) {
			fmt.Fprintln(os.Stderr, err)
			osExit(conflictErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
