package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runLit executes the root command against repoDir and returns stdout.
func runLit(t *testing.T, repoDir string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--repo", repoDir))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

func mustRunLit(t *testing.T, repoDir string, args ...string) string {
	t.Helper()

	out, err := runLit(t, repoDir, args...)
	require.NoError(t, err, "lit %v\noutput:\n%s", args, out)
	return out
}

func initCLIRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	mustRunLit(t, dir, "init")
	return dir
}

func writeRepoFile(t *testing.T, root, relPath, content string) {
	t.Helper()

	absPath := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0o755))
	require.NoError(t, os.WriteFile(absPath, []byte(content), 0o644))
}

func stageAndCommit(t *testing.T, dir, path, content, message string) {
	t.Helper()

	writeRepoFile(t, dir, path, content)
	mustRunLit(t, dir, "add", path)
	mustRunLit(t, dir, "commit", "-m", message, "--author", "tester")
}
