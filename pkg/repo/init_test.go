package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/lit/pkg/object"
)

func TestInit_Layout(t *testing.T) {
	r := initRepo(t)

	for _, rel := range []string{"objects", "refs/heads", "logs/refs/heads"} {
		info, err := os.Stat(filepath.Join(r.LitDir, filepath.FromSlash(rel)))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", rel, err)
		}
	}

	head, err := os.ReadFile(filepath.Join(r.LitDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(head) != "ref: refs/heads/main\n" {
		t.Fatalf("HEAD = %q", head)
	}

	tip, exists, err := r.ReadBranch("main")
	if err != nil {
		t.Fatalf("ReadBranch: %v", err)
	}
	if !exists || tip != "" {
		t.Fatalf("ReadBranch(main) = %q, %v; want empty existing branch", tip, exists)
	}

	cur, err := r.ResolveCurrentCommit()
	if err != nil {
		t.Fatalf("ResolveCurrentCommit: %v", err)
	}
	if cur != "" {
		t.Fatalf("ResolveCurrentCommit = %q, want empty", cur)
	}
}

func TestInit_Twice(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir, InitOptions{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(dir, InitOptions{}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second Init error = %v, want ErrAlreadyExists", err)
	}
}

func TestInit_OptionsPersist(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir, InitOptions{Hash: object.SHA1, DefaultBranch: "trunk"}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Store.Algorithm() != object.SHA1 {
		t.Fatalf("algorithm = %s, want sha1", r.Store.Algorithm())
	}
	if r.DefaultBranch() != "trunk" {
		t.Fatalf("default branch = %q, want trunk", r.DefaultBranch())
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "trunk" {
		t.Fatalf("CurrentBranch = %q, want trunk", branch)
	}

	h := commitFile(t, r, "a.txt", "hello", "first")
	if len(h) != 40 {
		t.Fatalf("sha1 commit digest %q has length %d", h, len(h))
	}
}

func TestInit_RejectsBadOptions(t *testing.T) {
	if _, err := Init(t.TempDir(), InitOptions{Hash: "md5"}); err == nil {
		t.Fatal("expected error for unknown hash")
	}
	if _, err := Init(t.TempDir(), InitOptions{DefaultBranch: "bad name"}); !errors.Is(err, ErrInvalidBranchName) {
		t.Fatalf("error = %v, want ErrInvalidBranchName", err)
	}
}

func TestOpen_WalksUp(t *testing.T) {
	r := initRepo(t)
	sub := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(sub): %v", err)
	}
	if opened.RootDir != r.RootDir {
		t.Fatalf("RootDir = %q, want %q", opened.RootDir, r.RootDir)
	}
}

func TestOpen_NotInitialized(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Open error = %v, want ErrNotInitialized", err)
	}
}
