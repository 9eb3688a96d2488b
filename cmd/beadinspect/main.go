// Command beadinspect validates BEAD challenge CSV datasets.
//
// Usage:
//
//	beadinspect validate ./data --results-dir ./results -s 50
//	beadinspect serve --config beadinspect.yaml
//	beadinspect formats --yaml
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/beadinspect/internal/core"
	_ "github.com/JonMunkholm/beadinspect/internal/core/formats" // Register all formats
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envLoaded := godotenv.Overload() == nil

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, envLoaded)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
// Validation findings never fail a run; only fatal errors return 1.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, envLoaded bool) int {
	cmd := newRootCmd(envLoaded)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(stderr, core.FormatUserError(err))
		}
		return 1
	}
	return 0
}
