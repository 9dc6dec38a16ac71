package repo

import (
	"fmt"

	"github.com/odvcencio/lit/pkg/object"
)

// PathBlame attributes the current object of a path to a commit.
type PathBlame struct {
	Path       string
	Hash       object.Hash // object stored at Path in the starting commit
	CommitHash object.Hash
	Author     string
	Timestamp  int64
	Message    string
}

// Blame returns the most recent commit on the first-parent history of the
// current commit where path changed relative to its parent.
func (r *Repo) Blame(path string) (*PathBlame, error) {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return nil, fmt.Errorf("blame %q: %w", path, err)
	}
	head, err := r.ResolveCurrentCommit()
	if err != nil {
		return nil, fmt.Errorf("blame: %w", err)
	}
	if head == "" {
		return nil, fmt.Errorf("blame: no commits yet: %w", ErrNotFound)
	}
	tree, err := r.CommitTree(head)
	if err != nil {
		return nil, fmt.Errorf("blame: %w", err)
	}
	h, ok := tree[rel]
	if !ok {
		return nil, fmt.Errorf("blame %q: path not in HEAD: %w", rel, ErrNotFound)
	}

	entries, err := r.LogByPath(head, 1, rel)
	if err != nil {
		return nil, fmt.Errorf("blame: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("blame %q: %w", rel, ErrNotFound)
	}
	e := entries[0]
	return &PathBlame{
		Path:       rel,
		Hash:       h,
		CommitHash: e.Hash,
		Author:     e.Author,
		Timestamp:  e.Timestamp,
		Message:    e.Message,
	}, nil
}
