package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd(opts *globalOptions) *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name [start]]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()

			if deleteBranch != "" {
				if len(args) > 0 {
					return fmt.Errorf("-d takes no positional arguments")
				}
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
				return nil
			}

			switch len(args) {
			case 1:
				tip, err := r.CreateBranch(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch '%s' at %s\n", args[0], shortOrEmpty(string(tip)))
				return nil
			case 2:
				at, err := r.ResolveRevision(args[1])
				if err != nil {
					return err
				}
				if err := r.CreateBranchAt(args[0], at); err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch '%s' at %s\n", args[0], short(string(at)))
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			current, _ := r.CurrentBranch()
			tips, err := r.BranchTips()
			if err != nil {
				return err
			}

			p := newPainter(out)
			for _, b := range branches {
				tip := shortOrEmpty(string(tips[b]))
				if b == current {
					fmt.Fprintf(out, "* %s %s\n", p.current(b), p.hash(tip))
				} else {
					fmt.Fprintf(out, "  %s %s\n", b, p.hash(tip))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")

	return cmd
}

func shortOrEmpty(h string) string {
	if h == "" {
		return "(no commits)"
	}
	return short(h)
}
