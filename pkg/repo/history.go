package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/lit/pkg/object"
)

// LogEntry is one commit of a history walk.
type LogEntry struct {
	Hash      object.Hash
	Tree      object.Hash
	Parents   []object.Hash
	Author    string
	Timestamp int64
	Message   string
	Signature string
	Branch    string // branch the commit is attributed to
}

// BranchPriority returns the order in which branches claim commits for
// history attribution: configured log.branch_priority entries that exist,
// then the default branch, then the remaining branches alphabetically.
func (r *Repo) BranchPriority() ([]string, error) {
	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	exists := make(map[string]bool, len(branches))
	for _, b := range branches {
		exists[b] = true
	}

	var configured []string
	if r.Config != nil {
		configured = r.Config.Log.BranchPriority
	}
	order := make([]string, 0, len(branches))
	placed := make(map[string]bool, len(branches))
	push := func(name string) {
		if exists[name] && !placed[name] {
			placed[name] = true
			order = append(order, name)
		}
	}
	for _, name := range configured {
		push(name)
	}
	push(r.DefaultBranch())
	for _, b := range branches {
		push(b)
	}
	return order, nil
}

// BranchAttribution maps every commit reachable from any branch to the first
// branch, in BranchPriority order, whose ancestry contains it.
func (r *Repo) BranchAttribution() (map[object.Hash]string, error) {
	order, err := r.BranchPriority()
	if err != nil {
		return nil, fmt.Errorf("branch attribution: %w", err)
	}
	labels := make(map[object.Hash]string)
	for _, name := range order {
		tip, _, err := r.ReadBranch(name)
		if err != nil {
			return nil, fmt.Errorf("branch attribution: %w", err)
		}
		if tip == "" {
			continue
		}
		reach, err := r.Ancestors(tip)
		if err != nil {
			return nil, fmt.Errorf("branch attribution %q: %w", name, err)
		}
		for h := range reach {
			if _, claimed := labels[h]; !claimed {
				labels[h] = name
			}
		}
	}
	return labels, nil
}

// HistoryIter lazily walks the first-parent chain from a start commit.
type HistoryIter struct {
	r        *Repo
	next     object.Hash
	labels   map[object.Hash]string
	fallback string
	seen     map[object.Hash]struct{}
	limit    int
	err      error
}

// History returns an iterator over the first-parent chain starting at start.
// Branch labels are computed once, up front.
func (r *Repo) History(start object.Hash) (*HistoryIter, error) {
	labels, err := r.BranchAttribution()
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &HistoryIter{
		r:        r,
		next:     start,
		labels:   labels,
		fallback: r.DefaultBranch(),
		seen:     make(map[object.Hash]struct{}),
		limit:    graphLimit(),
	}, nil
}

// Next returns the next entry. It returns false when the chain ends or an
// error occurred; check Err afterwards.
func (it *HistoryIter) Next() (LogEntry, bool) {
	if it.err != nil || it.next == "" {
		return LogEntry{}, false
	}
	h := it.next
	if _, ok := it.seen[h]; ok {
		it.next = ""
		return LogEntry{}, false
	}
	if len(it.seen) >= it.limit {
		it.err = graphLimitError("history", it.limit)
		return LogEntry{}, false
	}
	it.seen[h] = struct{}{}

	c, err := it.r.readCommit(h)
	if err != nil {
		it.err = fmt.Errorf("history: %w", err)
		return LogEntry{}, false
	}
	it.next = ""
	if len(c.Parents) > 0 {
		it.next = c.Parents[0]
	}

	label, ok := it.labels[h]
	if !ok {
		label = it.fallback
	}
	return LogEntry{
		Hash:      h,
		Tree:      c.TreeHash,
		Parents:   append([]object.Hash(nil), c.Parents...),
		Author:    c.Author,
		Timestamp: c.Timestamp,
		Message:   c.Message,
		Signature: c.Signature,
		Branch:    label,
	}, true
}

// Err returns the error that stopped the walk, if any.
func (it *HistoryIter) Err() error {
	return it.err
}

// Log walks first-parent history from start, returning up to limit entries
// newest first. limit <= 0 means no limit.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	if start == "" {
		return nil, nil
	}
	it, err := r.History(start)
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	for limit <= 0 || len(entries) < limit {
		e, ok := it.Next()
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return entries, nil
}

// LogByPath walks first-parent history from start and returns up to limit
// commits whose tree changed the object stored at path relative to their
// first parent.
func (r *Repo) LogByPath(start object.Hash, limit int, path string) ([]LogEntry, error) {
	it, err := r.History(start)
	if err != nil {
		return nil, err
	}
	var out []LogEntry
	for limit <= 0 || len(out) < limit {
		e, ok := it.Next()
		if !ok {
			break
		}
		cur, err := r.pathAt(e.Tree, path)
		if err != nil {
			return nil, fmt.Errorf("log %s: %w", path, err)
		}
		var prev object.Hash
		if len(e.Parents) > 0 {
			pc, err := r.readCommit(e.Parents[0])
			if err != nil {
				return nil, fmt.Errorf("log %s: %w", path, err)
			}
			if prev, err = r.pathAt(pc.TreeHash, path); err != nil {
				return nil, fmt.Errorf("log %s: %w", path, err)
			}
		}
		if cur != prev {
			out = append(out, e)
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("log %s: %w", path, err)
	}
	return out, nil
}

// BranchTips returns the non-empty branch tips keyed by branch name.
func (r *Repo) BranchTips() (map[string]object.Hash, error) {
	names, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	tips := make(map[string]object.Hash, len(names))
	for _, n := range names {
		tip, _, err := r.ReadBranch(n)
		if err != nil {
			return nil, err
		}
		if tip != "" {
			tips[n] = tip
		}
	}
	return tips, nil
}

// Decorations maps commit digests to the sorted branch names pointing at them.
func (r *Repo) Decorations() (map[object.Hash][]string, error) {
	tips, err := r.BranchTips()
	if err != nil {
		return nil, err
	}
	out := make(map[object.Hash][]string)
	for name, tip := range tips {
		out[tip] = append(out[tip], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out, nil
}
