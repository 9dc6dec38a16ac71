package repo

import (
	"fmt"

	"github.com/odvcencio/lit/pkg/object"
)

// VerifyReport combines object store integrity with ref reachability.
type VerifyReport struct {
	Objects   *object.VerifyReport
	Branches  int
	Reachable int
}

// Verify re-hashes every stored object and checks that each branch tip and
// everything reachable from it is present and well formed.
func (r *Repo) Verify() (*VerifyReport, error) {
	objs, err := r.Store.Verify()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	tips, err := r.BranchTips()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	roots := make([]object.Hash, 0, len(tips))
	for name, tip := range tips {
		if _, err := r.readCommit(tip); err != nil {
			return nil, fmt.Errorf("verify: branch %q: %w", name, err)
		}
		roots = append(roots, tip)
	}
	reach, err := r.Store.ReachableSet(roots)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	return &VerifyReport{Objects: objs, Branches: len(tips), Reachable: len(reach)}, nil
}
