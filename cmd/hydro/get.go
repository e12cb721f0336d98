package main

import (
	"github.com/spf13/cobra"
)

func getCmd(opts *options) *cobra.Command {
	var autorun bool

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Load a page and list its components",
		Long: `Load a page and list the Hydro components it contains.

With --autorun every action marked hydro-autorun is run first, the way
a browser runs them after the page starts.

Examples:
  hydro get http://localhost:5000/
  hydro get /counter --html
  hydro get /dashboard --autorun --metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(cmd, opts, args[0])
			if err != nil {
				return err
			}
			if autorun {
				if err := s.client.Autorun(ctx); err != nil {
					s.client.Close()
					return err
				}
			}
			return s.finish(ctx)
		},
	}

	cmd.Flags().BoolVar(&autorun, "autorun", false, "Run hydro-autorun actions after loading")
	return cmd
}
