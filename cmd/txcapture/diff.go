package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/willibrandon/txcapture/pkg/diff"
)

func newDiffCmd(a *app) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff <dirA> <dirB>",
		Short: "Compare the transaction and account files of two captures",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirA, err := a.path(args[0])
			if err != nil {
				return err
			}
			dirB, err := a.path(args[1])
			if err != nil {
				return err
			}

			diffs, err := diff.CompareWithOptions(a.fs, dirA, dirB, diff.Options{Coloring: !color.NoColor})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				fmt.Fprintln(out, "captures are identical")
				return nil
			}
			for _, d := range diffs {
				switch d.Change {
				case diff.Added:
					color.New(color.FgGreen).Fprintf(out, "+ %s\n", d.Name)
				case diff.Removed:
					color.New(color.FgRed).Fprintf(out, "- %s\n", d.Name)
				default:
					color.New(color.FgYellow).Fprintf(out, "~ %s\n", d.Name)
					fmt.Fprintln(out, d.Delta)
				}
			}
			if exitCode {
				return fmt.Errorf("%d files differ", len(diffs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Fail when the captures differ")
	return cmd
}
