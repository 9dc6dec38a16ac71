package repo

import (
	"fmt"
	"time"

	"github.com/odvcencio/lit/pkg/merge"
	"github.com/odvcencio/lit/pkg/object"
)

// MergeReport is the overall result of a repository-level merge.
type MergeReport struct {
	Source      string // branch merged in
	Target      string // current branch, advanced by the merge
	Base        object.Hash
	CurrentTip  object.Hash // target tip before the merge
	SourceTip   object.Hash
	FastForward bool
	MergeCommit object.Hash // set for three-way merges
	Tree        object.Hash
	Conflicts   []string       // sorted; resolved in favour of the target
	Changes     []merge.Change // per-path resolutions of a three-way merge
}

// HasConflicts reports whether any path conflicted.
func (m *MergeReport) HasConflicts() bool {
	return len(m.Conflicts) > 0
}

// Err returns a *ConflictError when the merge recorded conflicts, nil
// otherwise. The merge commit exists either way.
func (m *MergeReport) Err() error {
	if m == nil || len(m.Conflicts) == 0 {
		return nil
	}
	return &ConflictError{
		Source: m.Source,
		Target: m.Target,
		Commit: m.MergeCommit,
		Paths:  append([]string(nil), m.Conflicts...),
	}
}

// MergeMessage is the commit message of a three-way merge commit.
func MergeMessage(source, target string) string {
	return fmt.Sprintf("Merge branch '%s' into %s", source, target)
}

// Merge integrates branch source into the current branch.
//
//  1. Merging the current branch into itself is ErrSelfMerge
//  2. Both tips are resolved (ErrNotFound if either is missing or has no
//     commits) and their merge base computed (ErrUnrelatedHistories if none)
//  3. If the base is the current tip the current branch fast-forwards to the
//     source tip and no commit is written
//  4. Otherwise the three trees are merged with merge.Trees
//  5. The merged tree and a commit with parents (current tip, source tip) are
//     written and the current branch advanced
//
// Conflicts never stop the merge commit from being written; they are reported
// in MergeReport.Conflicts and through MergeReport.Err. The source branch is
// never modified.
func (r *Repo) Merge(source, author string) (*MergeReport, error) {
	unlock, err := r.lock("merge")
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if target == "" {
		return nil, fmt.Errorf("merge: %w", ErrDetachedHead)
	}
	if source == target {
		return nil, fmt.Errorf("merge %q: %w", source, ErrSelfMerge)
	}

	sourceTip, exists, err := r.ReadBranch(source)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("merge: branch %q: %w", source, ErrNotFound)
	}
	if sourceTip == "" {
		return nil, fmt.Errorf("merge: branch %q has no commits: %w", source, ErrNotFound)
	}
	currentTip, _, err := r.ReadBranch(target)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if currentTip == "" {
		return nil, fmt.Errorf("merge: branch %q has no commits: %w", target, ErrNotFound)
	}

	base, found, err := r.MergeBase(currentTip, sourceTip)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("merge %q into %q: %w", source, target, ErrUnrelatedHistories)
	}

	report := &MergeReport{
		Source:     source,
		Target:     target,
		Base:       base,
		CurrentTip: currentTip,
		SourceTip:  sourceTip,
	}
	log := r.logger.With("source", source, "target", target, "base", shortHash(base))

	if base == currentTip {
		reason := fmt.Sprintf("merge %s: fast-forward", source)
		if err := r.updateRef(branchRef(target), sourceTip, reason, expectOld(currentTip)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		c, err := r.readCommit(sourceTip)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		report.FastForward = true
		report.Tree = c.TreeHash
		log.Debug("fast-forward", "to", shortHash(sourceTip))
		return report, nil
	}

	baseTree, err := r.CommitTree(base)
	if err != nil {
		return nil, fmt.Errorf("merge: base tree: %w", err)
	}
	currentTree, err := r.CommitTree(currentTip)
	if err != nil {
		return nil, fmt.Errorf("merge: current tree: %w", err)
	}
	sourceTree, err := r.CommitTree(sourceTip)
	if err != nil {
		return nil, fmt.Errorf("merge: source tree: %w", err)
	}

	res := merge.Trees(baseTree, currentTree, sourceTree)
	report.Conflicts = res.Conflicts
	report.Changes = res.Changes

	treeHash, err := r.Store.WriteTree(object.TreeFromMap(res.Tree))
	if err != nil {
		return nil, fmt.Errorf("merge: write tree: %w", err)
	}
	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   []object.Hash{currentTip, sourceTip},
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   MergeMessage(source, target),
	})
	if err != nil {
		return nil, fmt.Errorf("merge: write commit: %w", err)
	}
	reason := fmt.Sprintf("merge %s: three-way", source)
	if err := r.updateRef(branchRef(target), commitHash, reason, expectOld(currentTip)); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	report.Tree = treeHash
	report.MergeCommit = commitHash
	if res.HasConflicts() {
		log.Warn("merge committed with conflicts", "commit", shortHash(commitHash), "conflicts", res.Conflicts)
	} else {
		log.Debug("merge committed", "commit", shortHash(commitHash))
	}
	return report, nil
}
