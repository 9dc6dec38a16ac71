package main

import (
	"fmt"

	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd(opts *globalOptions) *cobra.Command {
	var message string
	var author string
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged files as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, closeLog, err := openRepo(cmd, opts)
			if err != nil {
				return err
			}
			defer closeLog()

			var signer repo.CommitSigner
			if sign || cmd.Flags().Changed("key") {
				if keyPath == "" {
					keyPath = r.Config.Signing.Key
				}
				s, resolved, err := newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
				r.Logger().Debug("signing commit", "key", resolved)
				signer = s
			}

			h, err := r.CommitWithSigner(message, r.ResolveAuthor(author), signer)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil || branch == "" {
				branch = "HEAD"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, short(string(h)), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: core.author, $LIT_AUTHOR, $USER)")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key used with --sign (default: signing.key, then ~/.ssh)")

	return cmd
}
