package repo

import (
	"fmt"

	"github.com/odvcencio/lit/pkg/object"
)

// BuildTree writes the index as a tree object and returns its digest.
func (r *Repo) BuildTree(ix *Index) (object.Hash, error) {
	h, err := r.Store.WriteTree(object.TreeFromMap(ix.entries))
	if err != nil {
		return "", fmt.Errorf("build tree: %w", err)
	}
	return h, nil
}

// TreeMap reads a tree object as a path -> digest map. An empty digest is
// the empty tree.
func (r *Repo) TreeMap(treeHash object.Hash) (map[string]object.Hash, error) {
	if treeHash == "" {
		return map[string]object.Hash{}, nil
	}
	tr, err := r.Store.ReadTree(treeHash)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", treeHash, err)
	}
	return tr.Map(), nil
}

// CommitTree returns the path -> digest snapshot of a commit. An empty
// commit digest yields the empty tree.
func (r *Repo) CommitTree(commitHash object.Hash) (map[string]object.Hash, error) {
	if commitHash == "" {
		return map[string]object.Hash{}, nil
	}
	c, err := r.readCommit(commitHash)
	if err != nil {
		return nil, err
	}
	return r.TreeMap(c.TreeHash)
}

func (r *Repo) pathAt(treeHash object.Hash, path string) (object.Hash, error) {
	m, err := r.TreeMap(treeHash)
	if err != nil {
		return "", err
	}
	return m[path], nil
}
