package repo

import (
	"fmt"
	"io"
	"sort"

	"github.com/odvcencio/lit/pkg/object"
)

// BundleRoots returns the commits a repository bundle starts from: every
// branch tip plus a detached HEAD, deduplicated and sorted.
func (r *Repo) BundleRoots() ([]object.Hash, error) {
	tips, err := r.BranchTips()
	if err != nil {
		return nil, fmt.Errorf("bundle roots: %w", err)
	}
	seen := make(map[object.Hash]bool)
	var roots []object.Hash
	add := func(h object.Hash) {
		if h != "" && !seen[h] {
			seen[h] = true
			roots = append(roots, h)
		}
	}
	for _, tip := range tips {
		add(tip)
	}
	head, err := r.ReadHead()
	if err != nil {
		return nil, fmt.Errorf("bundle roots: %w", err)
	}
	if head.Kind == HeadDirect {
		add(head.Hash)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots, nil
}

// CreateBundle writes every object reachable from the bundle roots to w.
func (r *Repo) CreateBundle(w io.Writer) (*object.BundleStats, []object.Hash, error) {
	roots, err := r.BundleRoots()
	if err != nil {
		return nil, nil, err
	}
	stats, err := r.Store.WriteBundle(w, roots)
	if err != nil {
		return nil, nil, fmt.Errorf("create bundle: %w", err)
	}
	r.logger.Debug("bundle created", "roots", len(roots), "objects", stats.Objects)
	return stats, roots, nil
}

// Unbundle imports the objects of a bundle. Refs are not touched.
func (r *Repo) Unbundle(rd io.Reader) (*object.BundleStats, error) {
	stats, err := r.Store.ReadBundle(rd)
	if err != nil {
		return nil, fmt.Errorf("unbundle: %w", err)
	}
	r.logger.Debug("bundle imported", "objects", stats.Objects, "written", stats.Written)
	return stats, nil
}
