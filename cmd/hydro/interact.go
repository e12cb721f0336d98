package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func clickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "click URL SELECTOR",
		Short: "Click an element",
		Long: `Load a page and click the first element matching SELECTOR.

Boosted links are followed without a full navigation, buttons run their
x-hydro-action and submit buttons submit their form.

Examples:
  hydro click /counter "#increment"
  hydro click / "a[href='/about']" --html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return interact(cmd, opts, args[0], args[1], func(s *session) error {
				el, err := s.query(args[1])
				if err != nil {
					return err
				}
				return s.client.Click(cmd.Context(), el)
			})
		},
	}
}

func bindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bind URL SELECTOR VALUE",
		Short: "Change a bound input",
		Long: `Load a page, set the value of the input matching SELECTOR and fire
its change event. Checkboxes and radios take "true" or "false".

Examples:
  hydro bind /profile "input[name=email]" jane@example.com
  hydro bind /settings "#newsletter" true`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return interact(cmd, opts, args[0], args[1], func(s *session) error {
				el, err := s.query(args[1])
				if err != nil {
					return err
				}
				if s.checkable(el) {
					checked, err := parseBool(args[2])
					if err != nil {
						return err
					}
					return s.client.Check(cmd.Context(), el, checked)
				}
				return s.client.Change(cmd.Context(), el, args[2])
			})
		},
	}
}

func submitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "submit URL SELECTOR",
		Short: "Submit a form",
		Long: `Load a page and submit the form matching SELECTOR with its current
field values.

Examples:
  hydro submit /contact "form#contact"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return interact(cmd, opts, args[0], args[1], func(s *session) error {
				form, err := s.query(args[1])
				if err != nil {
					return err
				}
				return s.client.Submit(cmd.Context(), form)
			})
		},
	}
}

// interact opens url, runs fn and reports the resulting page.
func interact(cmd *cobra.Command, opts *options, url, selector string, fn func(*session) error) error {
	s, err := open(cmd, opts, url)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		s.client.Close()
		return err
	}
	success(cmd.OutOrStdout(), "%s %s", cmd.Name(), selector)
	return s.finish(cmd.Context())
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "on", "1", "yes":
		return true, nil
	case "false", "off", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
