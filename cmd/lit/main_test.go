package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/lit/pkg/repo"
)

func TestCLI_InitTwiceFails(t *testing.T) {
	dir := t.TempDir()

	out := mustRunLit(t, dir, "init", "--hash", "blake3", "--default-branch", "trunk")
	require.Contains(t, out, "initialized empty lit repository")
	require.Contains(t, out, "blake3")
	require.Contains(t, out, "branch trunk")

	_, err := runLit(t, dir, "init")
	require.ErrorIs(t, err, repo.ErrAlreadyExists)
}

func TestCLI_NotInitialized(t *testing.T) {
	_, err := runLit(t, t.TempDir(), "status")
	require.ErrorIs(t, err, repo.ErrNotInitialized)
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := initCLIRepo(t)

	out := mustRunLit(t, dir, "status")
	require.Contains(t, out, "on branch main")
	require.Contains(t, out, "no commits yet")

	writeRepoFile(t, dir, "a.txt", "alpha\n")
	out = mustRunLit(t, dir, "add", "a.txt")
	require.Contains(t, out, "added a.txt")

	out = mustRunLit(t, dir, "status")
	require.Contains(t, out, "new file:")
	require.Contains(t, out, "a.txt")

	out = mustRunLit(t, dir, "commit", "-m", "add a", "--author", "tester")
	require.Regexp(t, `^\[main [0-9a-f]{8}\] add a`, out)

	out = mustRunLit(t, dir, "add", "a.txt")
	require.Contains(t, out, "a.txt: no changes detected")

	out = mustRunLit(t, dir, "checkout", "-b", "feature")
	require.Contains(t, out, "switched to new branch 'feature'")
	stageAndCommit(t, dir, "b.txt", "bravo\n", "add b")

	mustRunLit(t, dir, "checkout", "main")
	stageAndCommit(t, dir, "c.txt", "charlie\n", "add c")

	out = mustRunLit(t, dir, "merge", "feature", "--author", "tester")
	require.Contains(t, out, "merging feature into main...")
	require.Contains(t, out, "merge completed cleanly")
	require.Contains(t, out, "Merge branch 'feature' into main")

	out = mustRunLit(t, dir, "log", "--oneline")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	require.Contains(t, lines[0], "(HEAD -> main)")
	require.Contains(t, lines[0], "[main] Merge branch 'feature' into main")
	require.Contains(t, lines[1], "[main] add c")
	require.Contains(t, lines[2], "[main] add a")

	out = mustRunLit(t, dir, "log", "feature", "--oneline")
	require.Contains(t, out, "(feature) [main] add b")

	out = mustRunLit(t, dir, "log", "-n", "1")
	require.Contains(t, out, "Merge:  ")
	require.Contains(t, out, "Branch: main")
	require.Contains(t, out, "Author: tester")
	require.Contains(t, out, "    Merge branch 'feature' into main")

	out = mustRunLit(t, dir, "branch")
	require.Contains(t, out, "* main")
	require.Contains(t, out, "  feature")

	out = mustRunLit(t, dir, "cat-object", "main")
	require.Contains(t, out, "message Merge branch 'feature' into main")
	require.Equal(t, 2, strings.Count(out, "parent "))

	out = mustRunLit(t, dir, "cat-object", "-t", "main")
	require.Equal(t, "commit\n", out)

	out = mustRunLit(t, dir, "reflog")
	require.Contains(t, out, "merge feature: three-way")
	require.Contains(t, out, "commit (initial): add a")

	out = mustRunLit(t, dir, "blame", "c.txt")
	require.Contains(t, out, "c.txt\ttester\t")
	require.Contains(t, out, "add c")

	out = mustRunLit(t, dir, "verify")
	require.Contains(t, out, "ok: verified")
	require.Contains(t, out, "2 branch(es)")
}

func TestCLI_MergeFastForward(t *testing.T) {
	dir := initCLIRepo(t)
	stageAndCommit(t, dir, "a.txt", "one\n", "first")
	mustRunLit(t, dir, "checkout", "-b", "feature")
	stageAndCommit(t, dir, "a.txt", "two\n", "second")
	mustRunLit(t, dir, "checkout", "main")

	out := mustRunLit(t, dir, "merge", "feature")
	require.Contains(t, out, "fast-forward")

	out = mustRunLit(t, dir, "log", "--oneline")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
	require.Contains(t, out, "(HEAD -> main, feature)")
}

func TestCLI_MergeConflictStillCommits(t *testing.T) {
	dir := initCLIRepo(t)
	stageAndCommit(t, dir, "a.txt", "base\n", "base")
	mustRunLit(t, dir, "checkout", "-b", "feature")
	stageAndCommit(t, dir, "a.txt", "theirs\n", "theirs")
	mustRunLit(t, dir, "checkout", "main")
	stageAndCommit(t, dir, "a.txt", "ours\n", "ours")

	out := mustRunLit(t, dir, "merge", "feature", "-v")
	require.Contains(t, out, "CONFLICT a.txt (kept main)")
	require.Contains(t, out, "merge committed with 1 conflict resolved in favour of main")
	require.Contains(t, out, "a.txt: conflict")

	out = mustRunLit(t, dir, "log", "--oneline", "-n", "1")
	require.Contains(t, out, "Merge branch 'feature' into main")

	// The merged tree keeps the current branch's object for a.txt.
	out = mustRunLit(t, dir, "diff", "feature", "main")
	require.Contains(t, out, "-theirs")
	require.Contains(t, out, "+ours")
}

func TestCLI_MergeErrors(t *testing.T) {
	dir := initCLIRepo(t)
	stageAndCommit(t, dir, "a.txt", "one\n", "first")

	_, err := runLit(t, dir, "merge", "main")
	require.ErrorIs(t, err, repo.ErrSelfMerge)

	_, err = runLit(t, dir, "merge", "missing")
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCLI_CommitRequiresMessageAndStagedFiles(t *testing.T) {
	dir := initCLIRepo(t)

	_, err := runLit(t, dir, "commit")
	require.ErrorContains(t, err, "commit message is required")

	_, err = runLit(t, dir, "commit", "-m", "empty")
	require.True(t, errors.Is(err, repo.ErrNothingToCommit), "got %v", err)
}

func TestCLI_AddAll(t *testing.T) {
	dir := initCLIRepo(t)
	writeRepoFile(t, dir, "a.txt", "a\n")
	writeRepoFile(t, dir, "b.txt", "b\n")
	writeRepoFile(t, dir, ".hidden", "h\n")

	out := mustRunLit(t, dir, "add", "--all")
	require.Contains(t, out, "added a.txt")
	require.Contains(t, out, "added b.txt")
	require.NotContains(t, out, ".hidden")

	_, err := runLit(t, dir, "add", "--all", "a.txt")
	require.Error(t, err)
	_, err = runLit(t, dir, "add")
	require.Error(t, err)
}

func TestCLI_BranchCreateAtAndDelete(t *testing.T) {
	dir := initCLIRepo(t)
	stageAndCommit(t, dir, "a.txt", "one\n", "first")
	stageAndCommit(t, dir, "a.txt", "two\n", "second")

	r, err := repo.Open(dir)
	require.NoError(t, err)
	head, err := r.ResolveRevision("HEAD")
	require.NoError(t, err)
	entries, err := r.Log(head, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	first := string(entries[1].Hash)

	out := mustRunLit(t, dir, "branch", "old", first[:10])
	require.Contains(t, out, "created branch 'old' at "+first[:8])

	out = mustRunLit(t, dir, "log", "old", "--oneline")
	require.Contains(t, out, "first")
	require.NotContains(t, out, "second")

	_, err = runLit(t, dir, "branch", "-d", "main")
	require.Error(t, err)

	out = mustRunLit(t, dir, "branch", "-d", "old")
	require.Contains(t, out, "deleted branch 'old'")

	_, err = runLit(t, dir, "branch", "bad..name")
	require.ErrorIs(t, err, repo.ErrInvalidBranchName)
}

func TestCLI_LogFileWritten(t *testing.T) {
	dir := initCLIRepo(t)
	// Commits are always recorded in the file log, whatever the console level.
	stageAndCommit(t, dir, "a.txt", "one\n", "first")

	require.FileExists(t, filepath.Join(dir, ".lit", "logs", "lit.log"))
}

func TestCLI_Version(t *testing.T) {
	out, err := runLit(t, t.TempDir(), "version")
	require.NoError(t, err)
	require.Equal(t, version+"\n", out)
}

func TestCLI_LogEmptyRepository(t *testing.T) {
	dir := initCLIRepo(t)
	out := mustRunLit(t, dir, "log")
	require.Equal(t, "no commits yet\n", out)
}

func TestCLI_AddResolvesFromWorkingDirectory(t *testing.T) {
	dir := initCLIRepo(t)
	writeRepoFile(t, dir, "sub/f.txt", "nested\n")
	writeRepoFile(t, dir, "f.txt", "top\n")

	t.Chdir(filepath.Join(dir, "sub"))
	out := mustRunLit(t, dir, "add", "f.txt")
	require.Contains(t, out, "added sub/f.txt")

	out = mustRunLit(t, dir, "status")
	require.Contains(t, out, "sub/f.txt")
	require.NotContains(t, out, " f.txt")
}
