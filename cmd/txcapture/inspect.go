package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willibrandon/txcapture/pkg/loader"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Print the content of a capture directory as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.path(args[0])
			if err != nil {
				return err
			}
			in, err := loader.Load(a.fs, dir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), in.Tree().String())
			return nil
		},
	}
}
