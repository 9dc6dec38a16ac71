package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/odvcencio/lit/pkg/object"
	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	var oneline bool
	var limit int
	var path string

	cmd := &cobra.Command{
		Use:   "log [rev]",
		Short: "Show commit history with branch attribution",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			var start object.Hash
			if len(args) == 1 {
				start, err = r.ResolveRevision(args[0])
			} else {
				start, err = r.ResolveCurrentCommit()
			}
			if err != nil {
				return err
			}
			if start == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			var entries []repo.LogEntry
			if strings.TrimSpace(path) != "" {
				entries, err = r.LogByPath(start, limit, path)
			} else {
				entries, err = r.Log(start, limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}

			decorations, err := r.Decorations()
			if err != nil {
				return err
			}
			head, err := r.ReadHead()
			if err != nil {
				return err
			}
			headHash, err := r.ResolveCurrentCommit()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := newPainter(out)
			for _, e := range entries {
				decoration := buildDecoration(e.Hash, headHash, head, decorations[e.Hash])
				if oneline {
					printOnelineEntry(out, p, e, decoration)
				} else {
					printFullEntry(out, p, e, decoration)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 for all)")
	cmd.Flags().StringVar(&path, "path", "", "only show commits that changed this path")

	return cmd
}

func printOnelineEntry(out io.Writer, p painter, e repo.LogEntry, decoration string) {
	line := p.hash(short(string(e.Hash)))
	if decoration != "" {
		line += " " + decoration
	}
	fmt.Fprintf(out, "%s [%s] %s\n", line, e.Branch, firstLine(e.Message))
}

func printFullEntry(out io.Writer, p painter, e repo.LogEntry, decoration string) {
	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", p.hash(string(e.Hash)), decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", p.hash(string(e.Hash)))
	}
	if len(e.Parents) > 1 {
		parents := make([]string, len(e.Parents))
		for i, ph := range e.Parents {
			parents[i] = short(string(ph))
		}
		fmt.Fprintf(out, "Merge:  %s\n", strings.Join(parents, " "))
	}
	fmt.Fprintf(out, "Branch: %s\n", e.Branch)
	fmt.Fprintf(out, "Author: %s\n", e.Author)
	if e.Timestamp != 0 {
		fmt.Fprintf(out, "Date:   %s\n", time.Unix(e.Timestamp, 0).Format("2006-01-02 15:04:05"))
	}
	if e.Signature != "" {
		fmt.Fprintln(out, "Signed: yes")
	}
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(e.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}

// buildDecoration returns a string like "(HEAD -> main, topic)" listing HEAD
// and the branches whose tip is commitHash, or "" when there are none.
func buildDecoration(commitHash, headHash object.Hash, head repo.HeadValue, branches []string) string {
	var names []string
	headHere := commitHash == headHash
	for _, b := range branches {
		if headHere && head.Kind == repo.HeadSymbolic && b == head.Branch {
			names = append([]string{"HEAD -> " + b}, names...)
			headHere = false
			continue
		}
		names = append(names, b)
	}
	if headHere {
		names = append([]string{"HEAD"}, names...)
	}
	if len(names) == 0 {
		return ""
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
