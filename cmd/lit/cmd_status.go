package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current branch and staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if st.Detached {
				fmt.Fprintf(out, "HEAD detached at %s\n", short(string(st.Head)))
			} else {
				fmt.Fprintf(out, "on branch %s\n", st.Branch)
				if st.Head == "" {
					fmt.Fprintln(out, "no commits yet")
				}
			}

			if len(st.Staged) == 0 {
				fmt.Fprintln(out, "nothing staged")
				return nil
			}
			fmt.Fprintln(out, "changes to be committed:")
			for _, e := range st.Staged {
				fmt.Fprintf(out, "  %-11s %s\n", e.State.String()+":", e.Path)
			}
			return nil
		},
	}
}
