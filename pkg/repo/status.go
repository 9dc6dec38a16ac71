package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/lit/pkg/object"
)

// StagedState classifies an index entry against the HEAD commit's tree.
type StagedState int

const (
	StagedNew StagedState = iota
	StagedModified
	StagedUnchanged
)

func (s StagedState) String() string {
	switch s {
	case StagedNew:
		return "new file"
	case StagedModified:
		return "modified"
	case StagedUnchanged:
		return "unchanged"
	}
	return fmt.Sprintf("StagedState(%d)", int(s))
}

// StatusEntry is one staged path.
type StatusEntry struct {
	Path  string
	Hash  object.Hash
	State StagedState
}

// StatusReport summarises HEAD and the staging area.
type StatusReport struct {
	Branch   string // "" when detached
	Detached bool
	Head     object.Hash // "" before the first commit
	Staged   []StatusEntry
}

// Status compares the index against the tree of the current commit.
func (r *Repo) Status() (*StatusReport, error) {
	head, err := r.ReadHead()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	tip, err := r.ResolveCurrentCommit()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	committed, err := r.CommitTree(tip)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	rep := &StatusReport{
		Branch:   head.Branch,
		Detached: head.Kind == HeadDirect,
		Head:     tip,
	}
	for _, e := range idx.Entries() {
		state := StagedNew
		if old, ok := committed[e.Path]; ok {
			state = StagedModified
			if old == e.Hash {
				state = StagedUnchanged
			}
		}
		rep.Staged = append(rep.Staged, StatusEntry{Path: e.Path, Hash: e.Hash, State: state})
	}
	sort.Slice(rep.Staged, func(i, j int) bool { return rep.Staged[i].Path < rep.Staged[j].Path })
	return rep, nil
}
