package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "add <files...>",
		Short: "Stage files for the next commit",
		Long: `Stage files for the next commit. Relative paths are taken from the current
directory when it lies inside the repository, and from the repository root
otherwise.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all takes no paths")
			}
			if !all && len(args) == 0 {
				return fmt.Errorf("nothing specified, nothing added (pass paths or --all)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()
			if all {
				results, err := r.AddAll()
				if err != nil {
					return err
				}
				for i := range results {
					printAddResult(out, &results[i])
				}
				return nil
			}

			for _, path := range args {
				res, err := r.Add(resolveWorkPath(r.RootDir, path))
				if err != nil {
					return err
				}
				printAddResult(out, res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage every file in the repository root")

	return cmd
}

// resolveWorkPath makes a relative path absolute against the current
// directory when that directory is inside root. Other paths are returned
// unchanged and resolve against root.
func resolveWorkPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, wd)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.Join(wd, path)
}

func printAddResult(out io.Writer, res *repo.AddResult) {
	if res.Unchanged {
		fmt.Fprintf(out, "%s: no changes detected\n", res.Path)
		return
	}
	fmt.Fprintf(out, "added %s (%s)\n", res.Path, short(string(res.Hash)))
}
