package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/lit/pkg/object"
	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var hash string
	var defaultBranch string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty lit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.repoPath
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			algo, err := object.ParseAlgorithm(hash)
			if err != nil {
				return err
			}
			r, err := repo.Init(abs, repo.InitOptions{Hash: algo, DefaultBranch: defaultBranch})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty lit repository in %s (%s, branch %s)\n",
				r.LitDir+string(filepath.Separator), r.Store.Algorithm(), r.DefaultBranch())
			return nil
		},
	}

	cmd.Flags().StringVar(&hash, "hash", string(object.DefaultAlgorithm), "digest algorithm: sha256, sha1 or blake3")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", repo.DefaultBranchName, "name of the initial branch")

	return cmd
}
