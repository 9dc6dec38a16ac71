package repo

import (
	"fmt"
	"sync"

	"github.com/odvcencio/lit/pkg/object"
)

const maxGraphSteps = 1_000_000

// graphStepsLimit lets tests tighten the traversal bound without affecting
// the production default.
var graphStepsLimit = maxGraphSteps

func graphLimit() int {
	if graphStepsLimit <= 0 || graphStepsLimit > maxGraphSteps {
		return maxGraphSteps
	}
	return graphStepsLimit
}

func graphLimitError(op string, limit int) error {
	return fmt.Errorf("%s: traversal exceeded maximum steps (%d)", op, limit)
}

type mergeBaseKey struct {
	a, b object.Hash
}

type mergeBaseEntry struct {
	base  object.Hash
	found bool
}

// commitCache memoizes parsed commits and merge-base answers. Commits are
// immutable, so entries never go stale.
type commitCache struct {
	mu         sync.RWMutex
	commits    map[object.Hash]*object.CommitObj
	mergeBases map[mergeBaseKey]mergeBaseEntry
}

func newCommitCache() *commitCache {
	return &commitCache{
		commits:    make(map[object.Hash]*object.CommitObj),
		mergeBases: make(map[mergeBaseKey]mergeBaseEntry),
	}
}

func (c *commitCache) load(h object.Hash) (*object.CommitObj, bool) {
	c.mu.RLock()
	commit, ok := c.commits[h]
	c.mu.RUnlock()
	return commit, ok
}

func (c *commitCache) store(h object.Hash, commit *object.CommitObj) {
	c.mu.Lock()
	c.commits[h] = commit
	c.mu.Unlock()
}

// Merge-base answers are keyed by ordered pair: the search is not symmetric.
func (c *commitCache) loadMergeBase(a, b object.Hash) (mergeBaseEntry, bool) {
	c.mu.RLock()
	e, ok := c.mergeBases[mergeBaseKey{a, b}]
	c.mu.RUnlock()
	return e, ok
}

func (c *commitCache) storeMergeBase(a, b, base object.Hash, found bool) {
	c.mu.Lock()
	c.mergeBases[mergeBaseKey{a, b}] = mergeBaseEntry{base: base, found: found}
	c.mu.Unlock()
}

func (r *Repo) readCommit(h object.Hash) (*object.CommitObj, error) {
	cache := r.commits()
	if commit, ok := cache.load(h); ok {
		return commit, nil
	}
	commit, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	cache.store(h, commit)
	return commit, nil
}

// ParentsOf returns the parent digests of commit c in stored order.
func (r *Repo) ParentsOf(c object.Hash) ([]object.Hash, error) {
	commit, err := r.readCommit(c)
	if err != nil {
		return nil, err
	}
	return append([]object.Hash(nil), commit.Parents...), nil
}

// Ancestors returns every commit reachable from c through any parent,
// including c itself. Already visited commits are skipped, so a cyclic graph
// terminates.
func (r *Repo) Ancestors(c object.Hash) (map[object.Hash]struct{}, error) {
	seen := make(map[object.Hash]struct{})
	if c == "" {
		return seen, nil
	}
	limit := graphLimit()
	stack := []object.Hash{c}
	steps := 0
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[h]; ok {
			continue
		}
		steps++
		if steps > limit {
			return nil, graphLimitError("ancestors", limit)
		}
		seen[h] = struct{}{}

		parents, err := r.ParentsOf(h)
		if err != nil {
			return nil, fmt.Errorf("ancestors: %w", err)
		}
		for i := len(parents) - 1; i >= 0; i-- {
			if _, ok := seen[parents[i]]; !ok {
				stack = append(stack, parents[i])
			}
		}
	}
	return seen, nil
}

// MergeBase returns a best common ancestor of a and b: the ancestry of a is
// collected in full, then b's ancestry is walked breadth-first (b itself,
// then parents in stored order) and the first commit in a's ancestry wins.
//
// This is not a true lowest common ancestor when a and b have several merge
// bases (criss-cross histories): MergeBase(a, b) and MergeBase(b, a) may
// then differ.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, bool, error) {
	if a == "" || b == "" {
		return "", false, nil
	}
	if a == b {
		return a, true, nil
	}
	cache := r.commits()
	if e, ok := cache.loadMergeBase(a, b); ok {
		return e.base, e.found, nil
	}

	ancestorsA, err := r.Ancestors(a)
	if err != nil {
		return "", false, fmt.Errorf("merge base: %w", err)
	}

	limit := graphLimit()
	queue := []object.Hash{b}
	visited := map[object.Hash]struct{}{b: {}}
	steps := 0
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := ancestorsA[h]; ok {
			cache.storeMergeBase(a, b, h, true)
			return h, true, nil
		}
		steps++
		if steps > limit {
			return "", false, graphLimitError("merge base", limit)
		}
		parents, err := r.ParentsOf(h)
		if err != nil {
			return "", false, fmt.Errorf("merge base: %w", err)
		}
		for _, p := range parents {
			if _, ok := visited[p]; ok {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}

	cache.storeMergeBase(a, b, "", false)
	return "", false, nil
}

// IsAncestor reports whether ancestor is reachable from descendant. A commit
// is its own ancestor.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor == "" || descendant == "" {
		return false, nil
	}
	if ancestor == descendant {
		return true, nil
	}
	set, err := r.Ancestors(descendant)
	if err != nil {
		return false, err
	}
	_, ok := set[ancestor]
	return ok, nil
}
