package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/lit/pkg/object"
)

var (
	ErrNotInitialized     = errors.New("not a lit repository (or any parent up to /)")
	ErrAlreadyExists      = errors.New("already exists")
	ErrSelfMerge          = errors.New("cannot merge a branch into itself")
	ErrUnrelatedHistories = errors.New("refusing to merge unrelated histories")
	ErrConflictDetected   = errors.New("merge conflict")
	ErrNothingToCommit    = errors.New("nothing to commit")
	ErrInvalidBranchName  = errors.New("invalid branch name")
	ErrDetachedHead       = errors.New("HEAD is detached")
	ErrLockTimeout        = errors.New("timed out waiting for lock")
	ErrRefCASMismatch     = errors.New("ref compare-and-swap mismatch")

	// ErrNotFound and ErrMalformedObject are shared with the object store so
	// callers can match either layer with errors.Is.
	ErrNotFound        = object.ErrNotFound
	ErrMalformedObject = object.ErrMalformedObject
)

// ConflictError is returned by MergeReport.Err when a merge commit was
// written with conflicting paths resolved in favour of the current branch.
type ConflictError struct {
	Source string
	Target string
	Commit object.Hash
	Paths  []string
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("merge %s into %s: %s in %d path(s): %s",
		e.Source, e.Target, ErrConflictDetected, len(e.Paths), strings.Join(e.Paths, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictDetected
}

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("update ref %q: reflog append failed (old=%s new=%s): %v",
		e.Ref, e.OldHash, e.NewHash, e.Err)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
