package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/lit/pkg/object"
)

// ChangeKind classifies a path difference between two trees.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeDeleted
	ChangeModified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeModified:
		return "modified"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// FileChange is one differing path.
type FileChange struct {
	Path    string
	Kind    ChangeKind
	OldHash object.Hash // "" when added
	NewHash object.Hash // "" when deleted
}

// DiffTrees lists the paths whose object differs between two tree maps,
// sorted by path.
func DiffTrees(from, to map[string]object.Hash) []FileChange {
	var out []FileChange
	for p, old := range from {
		cur, ok := to[p]
		switch {
		case !ok:
			out = append(out, FileChange{Path: p, Kind: ChangeDeleted, OldHash: old})
		case cur != old:
			out = append(out, FileChange{Path: p, Kind: ChangeModified, OldHash: old, NewHash: cur})
		}
	}
	for p, cur := range to {
		if _, ok := from[p]; !ok {
			out = append(out, FileChange{Path: p, Kind: ChangeAdded, NewHash: cur})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DiffCommits lists the path changes from one commit's tree to another's.
func (r *Repo) DiffCommits(from, to object.Hash) ([]FileChange, error) {
	fromTree, err := r.CommitTree(from)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	toTree, err := r.CommitTree(to)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return DiffTrees(fromTree, toTree), nil
}
