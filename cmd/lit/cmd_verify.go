package main

import (
	"fmt"

	"github.com/odvcencio/lit/pkg/object"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify object integrity and branch reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			report, err := r.Verify()
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"ok: verified %d object(s) (%d blob, %d tree, %d commit), %d branch(es), %d reachable\n",
				report.Objects.Objects,
				report.Objects.ByType[object.TypeBlob],
				report.Objects.ByType[object.TypeTree],
				report.Objects.ByType[object.TypeCommit],
				report.Branches,
				report.Reachable,
			)
			return nil
		},
	}
}
