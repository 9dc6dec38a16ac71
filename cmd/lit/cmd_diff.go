package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/lit/pkg/object"
	"github.com/odvcencio/lit/pkg/repo"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

const lineDiffContextLines = 3

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "diff <from> [to]",
		Short: "Show changes between two commits",
		Long:  "Show changes between two commits. With a single revision, compare it against HEAD.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			toRev := "HEAD"
			if len(args) == 2 {
				toRev = args[1]
			}
			from, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			to, err := r.ResolveRevision(toRev)
			if err != nil {
				return err
			}

			changes, err := r.DiffCommits(from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range changes {
				if nameOnly {
					fmt.Fprintf(out, "%-8s %s\n", c.Kind, c.Path)
					continue
				}
				if err := printFileDiff(out, r, c); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-status", false, "list changed paths only")

	return cmd
}

func printFileDiff(out io.Writer, r *repo.Repo, c repo.FileChange) error {
	before, err := blobData(r, c.OldHash)
	if err != nil {
		return fmt.Errorf("diff %s: %w", c.Path, err)
	}
	after, err := blobData(r, c.NewHash)
	if err != nil {
		return fmt.Errorf("diff %s: %w", c.Path, err)
	}

	fromFile, toFile := "a/"+c.Path, "b/"+c.Path
	switch c.Kind {
	case repo.ChangeAdded:
		fromFile = "/dev/null"
	case repo.ChangeDeleted:
		toFile = "/dev/null"
	}

	fmt.Fprintf(out, "diff --lit a/%s b/%s\n", c.Path, c.Path)
	if isBinary(before) || isBinary(after) {
		fmt.Fprintf(out, "Binary files %s and %s differ\n", fromFile, toFile)
		return nil
	}
	return writeUnifiedDiff(out, fromFile, toFile, before, after)
}

func writeUnifiedDiff(out io.Writer, fromFile, toFile string, before, after []byte) error {
	ud := difflib.UnifiedDiff{
		A:        diffLines(before),
		B:        diffLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  lineDiffContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(out, "(no textual changes)")
		return nil
	}
	_, err = io.WriteString(out, text)
	return err
}

// diffLines splits data into newline-terminated lines. A final line without a
// newline gets one so that the hunk output stays line oriented.
func diffLines(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}
	s := string(data)
	if strings.HasSuffix(s, "\n") {
		lines := strings.SplitAfter(s, "\n")
		return lines[:len(lines)-1]
	}
	return difflib.SplitLines(s)
}

func blobData(r *repo.Repo, h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	b, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}
