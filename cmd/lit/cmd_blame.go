package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBlameCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blame <path>",
		Short: "Show the commit that last changed a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			result, err := r.Blame(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", result.Path, result.Author, result.CommitHash, firstLine(result.Message))
			return nil
		},
	}
}
