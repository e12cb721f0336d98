package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// options are the flags shared by every page command.
type options struct {
	config   string
	verbose  bool
	snapshot string
	html     bool
	metrics  bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hydro",
		Short: "Drive Hydro pages from the command line",
		Long: `hydro is a headless client for Hydro server components.

It loads a page, performs an interaction the way a browser would
(click, bind an input, submit a form) and reports what changed:

  • Requests are queued and sent one at a time
  • Bound inputs are debounced and sent in batches
  • Location, redirect and trigger headers are honored
  • The final document can be printed or stored as a snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c", "", "Config file (default: hydro.json, hydro.jsonc or hydro.yaml in the working directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every request")
	flags.StringVar(&opts.snapshot, "snapshot", "", "Store the final document under this key")
	flags.BoolVar(&opts.html, "html", false, "Print the final document")
	flags.BoolVar(&opts.metrics, "metrics", false, "Print client metrics when done")

	cmd.AddCommand(
		getCmd(opts),
		clickCmd(opts),
		bindCmd(opts),
		submitCmd(opts),
		versionCmd(),
	)
	return cmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
