package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBundleCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Move objects between repositories as a single file",
	}
	cmd.AddCommand(newBundleCreateCmd(opts))
	cmd.AddCommand(newBundleUnbundleCmd(opts))
	return cmd
}

func newBundleCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <file>",
		Short: "Write every object reachable from the branch tips to a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create bundle file: %w", err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close bundle file: %w", cerr)
				}
			}()

			stats, _, err := r.CreateBundle(f)
			if err != nil {
				return err
			}
			tips, err := r.BranchTips()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %d object(s) to %s\n", stats.Objects, args[0])
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				if tip := tips[b]; tip != "" {
					fmt.Fprintf(out, "%s %s\n", tip, b)
				}
			}
			return nil
		},
	}
}

func newBundleUnbundleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unbundle <file>",
		Short: "Import the objects of a bundle",
		Long:  "Import the objects of a bundle. Branches are not created; use 'lit branch <name> <digest>'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open bundle file: %w", err)
			}
			defer f.Close()

			stats, err := r.Unbundle(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d object(s), %d new\n", stats.Objects, stats.Written)
			return nil
		},
	}
}
