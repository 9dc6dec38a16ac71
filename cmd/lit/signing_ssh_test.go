package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/lit/pkg/object"
	"github.com/odvcencio/lit/pkg/repo"
)

func writeTestSigningKey(t *testing.T) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "lit test key")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

func TestSignedCommitVerifies(t *testing.T) {
	dir := initCLIRepo(t)
	key := writeTestSigningKey(t)

	writeRepoFile(t, dir, "a.txt", "signed\n")
	mustRunLit(t, dir, "add", "a.txt")
	mustRunLit(t, dir, "commit", "-m", "signed commit", "--author", "tester", "--sign", "--key", key)

	out := mustRunLit(t, dir, "verify-commit", "HEAD")
	require.Contains(t, out, "good signature on")
	require.Contains(t, out, "ssh-ed25519")
	require.Contains(t, out, "SHA256:")

	out = mustRunLit(t, dir, "log", "-n", "1")
	require.Contains(t, out, "Signed: yes")
}

func TestSigningKeyFromConfig(t *testing.T) {
	dir := initCLIRepo(t)
	key := writeTestSigningKey(t)

	r, err := repo.Open(dir)
	require.NoError(t, err)
	cfg := *r.Config
	cfg.Signing.Key = key
	require.NoError(t, r.WriteConfig(&cfg))

	writeRepoFile(t, dir, "a.txt", "signed\n")
	mustRunLit(t, dir, "add", "a.txt")
	mustRunLit(t, dir, "commit", "-m", "signed commit", "-S")

	mustRunLit(t, dir, "verify-commit", "main")
}

func TestTamperedCommitFailsVerification(t *testing.T) {
	dir := initCLIRepo(t)
	key := writeTestSigningKey(t)

	writeRepoFile(t, dir, "a.txt", "signed\n")
	mustRunLit(t, dir, "add", "a.txt")
	mustRunLit(t, dir, "commit", "-m", "original", "--author", "tester", "--sign", "--key", key)

	r, err := repo.Open(dir)
	require.NoError(t, err)
	head, err := r.ResolveRevision("HEAD")
	require.NoError(t, err)
	c, err := r.Store.ReadCommit(head)
	require.NoError(t, err)

	forged := *c
	forged.Message = "forged"
	forgedHash, err := r.Store.WriteCommit(&forged)
	require.NoError(t, err)

	_, err = runLit(t, dir, "verify-commit", string(forgedHash))
	require.ErrorIs(t, err, errBadSignature)

	_, err = verifyCommitSignature(c)
	require.NoError(t, err)
}

func TestUnsignedCommitFailsVerification(t *testing.T) {
	dir := initCLIRepo(t)
	stageAndCommit(t, dir, "a.txt", "plain\n", "plain")

	_, err := runLit(t, dir, "verify-commit", "HEAD")
	require.ErrorIs(t, err, errUnsigned)
}

func TestVerifyCommitSignature_RejectsUnknownFormat(t *testing.T) {
	_, err := verifyCommitSignature(&object.CommitObj{Signature: "gpg:abc"})
	require.ErrorContains(t, err, "unsupported signature format")
}
