package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hydrostack/hydro-go/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, rootCmd()); err != nil {
		errors.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// execute runs cmd. Errors that are not already coded, such as bad
// arguments, are reported as H060.
func execute(ctx context.Context, cmd *cobra.Command) error {
	if err := cmd.ExecuteContext(ctx); err != nil {
		return errors.FromError(err, "H060")
	}
	return nil
}
