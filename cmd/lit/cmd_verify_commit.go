package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCommitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit <rev>",
		Short: "Check the SSH signature of a commit",
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
			c, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}

			pub, err := verifyCommitSignature(c)
			if err != nil {
				return fmt.Errorf("commit %s: %w", short(string(h)), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good signature on %s from %s key %s\n",
				short(string(h)), pub.Type(), ssh.FingerprintSHA256(pub))
			return nil
		},
	}
}
