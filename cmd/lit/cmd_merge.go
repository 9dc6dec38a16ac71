package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/lit/pkg/merge"
	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd(opts *globalOptions) *cobra.Command {
	var author string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Merge a branch into the current branch.

When the current branch is an ancestor of <branch> it is fast-forwarded.
Otherwise a merge commit is always written. Paths changed differently on
both sides keep the current branch's version and are reported as conflicts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branchName := args[0]

			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "merging %s into %s...\n", branchName, current)

			report, err := r.Merge(branchName, r.ResolveAuthor(author))
			if err != nil {
				return err
			}

			if report.FastForward {
				fmt.Fprintf(out, "fast-forward %s..%s\n", short(string(report.CurrentTip)), short(string(report.SourceTip)))
				return nil
			}

			p := newPainter(out)
			if verbose {
				for _, c := range report.Changes {
					printChange(out, c)
				}
			}
			if report.HasConflicts() {
				for _, path := range report.Conflicts {
					fmt.Fprintf(out, "%s %s (kept %s)\n", p.red("CONFLICT"), path, current)
				}
				n := len(report.Conflicts)
				plural := "s"
				if n == 1 {
					plural = ""
				}
				fmt.Fprintln(out, p.yellow(fmt.Sprintf("merge committed with %d conflict%s resolved in favour of %s", n, plural, current)))
			} else {
				fmt.Fprintln(out, "merge completed cleanly")
			}
			fmt.Fprintf(out, "[%s %s] %s\n", current, short(string(report.MergeCommit)), repo.MergeMessage(branchName, current))
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "override author (default: core.author, $LIT_AUTHOR, $USER)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the resolution of every path")

	return cmd
}

func printChange(out io.Writer, c merge.Change) {
	switch c.Disposition {
	case merge.Unchanged, merge.AddedOurs, merge.OursOnly:
		fmt.Fprintf(out, "  %s: kept (%s)\n", c.Path, c.Disposition)
	case merge.Conflict:
		fmt.Fprintf(out, "  %s: conflict\n", c.Path)
	default:
		fmt.Fprintf(out, "  %s: merged (%s)\n", c.Path, c.Disposition)
	}
}
