package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatObjectCmd(opts *globalOptions) *cobra.Command {
	var typeOnly bool

	cmd := &cobra.Command{
		Use:   "cat-object <rev|digest>",
		Short: "Print the type and content of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			objType, data, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if typeOnly {
				fmt.Fprintln(out, objType)
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVarP(&typeOnly, "type", "t", false, "print the object type only")

	return cmd
}
