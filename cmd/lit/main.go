package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/lit/pkg/logging"
	"github.com/odvcencio/lit/pkg/repo"
	"github.com/spf13/cobra"
)

const version = "lit 0.1.0-dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	repoPath string
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "lit",
		Short:         "Minimal content-addressed version control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.repoPath, "repo", ".", "path inside the repository")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newCommitCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newBranchCmd(opts))
	root.AddCommand(newCheckoutCmd(opts))
	root.AddCommand(newMergeCmd(opts))
	root.AddCommand(newReflogCmd(opts))
	root.AddCommand(newDiffCmd(opts))
	root.AddCommand(newCatObjectCmd(opts))
	root.AddCommand(newVerifyCmd(opts))
	root.AddCommand(newVerifyCommitCmd(opts))
	root.AddCommand(newBundleCmd(opts))
	root.AddCommand(newBlameCmd(opts))

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// openRepo opens the repository containing opts.repoPath and attaches a
// logger built from its configuration. The returned func closes the log file.
func openRepo(cmd *cobra.Command, opts *globalOptions) (*repo.Repo, func(), error) {
	r, err := repo.Open(opts.repoPath)
	if err != nil {
		return nil, nil, err
	}
	l, err := newLogger(cmd, opts, r.Config, r.LitDir)
	if err != nil {
		return nil, nil, err
	}
	r.SetLogger(l.Logger)
	return r, func() { _ = l.Close() }, nil
}

func newLogger(cmd *cobra.Command, opts *globalOptions, cfg *repo.Config, litDir string) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Console:    cmd.ErrOrStderr(),
		Debug:      opts.debug,
		Level:      cfg.Log.Level,
		File:       cfg.LogFilePath(litDir),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func short(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
