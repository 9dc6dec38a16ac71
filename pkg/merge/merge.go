// Package merge reconciles flat path→object trees.
package merge

import (
	"sort"

	"github.com/odvcencio/lit/pkg/object"
)

// Change records the resolution of one path.
type Change struct {
	Path        string
	Disposition Disposition
	Base        object.Hash // empty when absent
	Current     object.Hash
	Source      object.Hash
}

// Result holds the output of a three-way tree merge.
type Result struct {
	Tree      map[string]object.Hash
	Conflicts []string // sorted
	Changes   []Change // sorted by path, one per path of current ∪ source
}

// HasConflicts reports whether any path conflicted.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Trees merges source into current relative to base. Nil maps are treated as
// empty trees; the inputs are never modified.
//
// For every path in source:
//   - absent from base: the source object wins
//   - unchanged in current (base == current): the source object wins
//   - unchanged in source (base == source): current is kept
//   - changed on both sides: current is kept and the path is reported as a
//     conflict, even when both sides hold the same object
//
// Paths present only in current carry over untouched. A path removed by the
// source side is not removed from the result.
func Trees(base, current, source map[string]object.Hash) *Result {
	res := &Result{Tree: make(map[string]object.Hash, len(current)+len(source))}
	for p, h := range current {
		res.Tree[p] = h
	}

	for p, src := range source {
		b, inBase := base[p]
		cur, inCurrent := current[p]
		ch := Change{Path: p, Base: b, Current: cur, Source: src}

		switch {
		case !inBase:
			res.Tree[p] = src
			if inCurrent && cur == src {
				ch.Disposition = BothSame
			} else {
				ch.Disposition = AddedTheirs
			}
		case b == src && (!inCurrent || b == cur):
			ch.Disposition = Unchanged
			if !inCurrent {
				ch.Disposition = OursOnly
			}
		case inCurrent && b == cur:
			res.Tree[p] = src
			ch.Disposition = TheirsOnly
		case b == src:
			ch.Disposition = OursOnly
		default:
			ch.Disposition = Conflict
			res.Conflicts = append(res.Conflicts, p)
		}
		res.Changes = append(res.Changes, ch)
	}

	for p, cur := range current {
		if _, ok := source[p]; ok {
			continue
		}
		res.Changes = append(res.Changes, Change{
			Path:        p,
			Disposition: AddedOurs,
			Base:        base[p],
			Current:     cur,
		})
	}

	sort.Strings(res.Conflicts)
	sort.Slice(res.Changes, func(i, j int) bool { return res.Changes[i].Path < res.Changes[j].Path })
	return res
}
