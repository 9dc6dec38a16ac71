package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/lit/pkg/object"
)

func initRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), InitOptions{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeWorkFile(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

// commitFile writes name with content, stages it and commits.
func commitFile(t *testing.T, r *Repo, name, content, message string) object.Hash {
	t.Helper()
	writeWorkFile(t, r, name, content)
	if _, err := r.Add(name); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	h, err := r.Commit(message, "tester")
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

// writeCommit stores a commit over a single-file tree without touching refs.
func writeCommit(t *testing.T, r *Repo, content, message string, parents ...object.Hash) object.Hash {
	t.Helper()
	blob, err := r.Store.Put([]byte(content))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	tree, err := r.Store.WriteTree(object.TreeFromMap(map[string]object.Hash{"f.txt": blob}))
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash: tree,
		Parents:  parents,
		Author:   "tester",
		Message:  message,
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	return h
}

func mustBlobDigest(t *testing.T, r *Repo, content string) object.Hash {
	t.Helper()
	h, err := r.Store.Digest([]byte(content))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	return h
}

func countObjects(t *testing.T, r *Repo) int {
	t.Helper()
	rep, err := r.Store.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return rep.Objects
}
