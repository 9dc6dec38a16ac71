package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/odvcencio/lit/pkg/object"
)

// ValidateBranchName rejects names that cannot be stored as a flat ref file
// or would be confused with options and lock files.
func ValidateBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidBranchName)
	case name == "HEAD":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidBranchName, name)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q has a leading %q", ErrInvalidBranchName, name, name[:1])
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains \"..\"", ErrInvalidBranchName, name)
	case strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("%w: %q ends with .lock", ErrInvalidBranchName, name)
	case strings.ContainsAny(name, `/\:~^?*[`):
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidBranchName, name)
	}
	for _, c := range name {
		if unicode.IsSpace(c) || unicode.IsControl(c) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidBranchName, name)
		}
	}
	return nil
}

// CreateBranch creates a new branch pointing at the current commit. When the
// current branch has no commits yet the new ref file is empty.
func (r *Repo) CreateBranch(name string) (object.Hash, error) {
	unlock, err := r.lock("create branch")
	if err != nil {
		return "", err
	}
	defer unlock()

	at, err := r.ResolveCurrentCommit()
	if err != nil {
		return "", fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.createBranchLocked(name, at); err != nil {
		return "", err
	}
	return at, nil
}

// CreateBranchAt creates a new branch pointing at the given commit.
func (r *Repo) CreateBranchAt(name string, at object.Hash) error {
	unlock, err := r.lock("create branch")
	if err != nil {
		return err
	}
	defer unlock()

	if at != "" {
		if _, err := r.readCommit(at); err != nil {
			return fmt.Errorf("create branch %q: %w", name, err)
		}
	}
	return r.createBranchLocked(name, at)
}

func (r *Repo) createBranchLocked(name string, at object.Hash) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	reason := "branch: created"
	if at != "" {
		reason = "branch: created from " + shortHash(at)
	}
	if err := r.updateRef(branchRef(name), at, reason, mustNotExist); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("create branch %q: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes a branch ref and its reflog. The current branch
// cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	unlock, err := r.lock("delete branch")
	if err != nil {
		return err
	}
	defer unlock()

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}

	refPath := filepath.Join(r.LitDir, filepath.FromSlash(branchRef(name)))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	_ = os.Remove(filepath.Join(r.LitDir, "logs", filepath.FromSlash(branchRef(name))))
	r.logger.Debug("branch deleted", "branch", name)
	return nil
}

// ListBranches reads .lit/refs/heads/ and returns the branch names sorted
// alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	headsDir := filepath.Join(r.LitDir, "refs", "heads")

	entries, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SwitchBranch points HEAD at an existing branch. Working tree files are not
// touched.
func (r *Repo) SwitchBranch(name string) error {
	unlock, err := r.lock("switch branch")
	if err != nil {
		return err
	}
	defer unlock()
	return r.switchBranchLocked(name)
}

// CreateAndSwitchBranch creates name at the current commit and switches to it
// under a single lock.
func (r *Repo) CreateAndSwitchBranch(name string) error {
	unlock, err := r.lock("switch branch")
	if err != nil {
		return err
	}
	defer unlock()

	at, err := r.ResolveCurrentCommit()
	if err != nil {
		return fmt.Errorf("switch branch: %w", err)
	}
	if err := r.createBranchLocked(name, at); err != nil {
		return err
	}
	return r.switchBranchLocked(name)
}

func (r *Repo) switchBranchLocked(name string) error {
	_, exists, err := r.ReadBranch(name)
	if err != nil {
		return fmt.Errorf("switch branch: %w", err)
	}
	if !exists {
		return fmt.Errorf("switch branch %q: %w", name, ErrNotFound)
	}
	return r.SetHead(HeadValue{Kind: HeadSymbolic, Branch: name})
}
