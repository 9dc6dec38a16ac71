package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/lit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// Commit creates a new commit from the staging area.
//
//  1. Read the index; an empty index is ErrNothingToCommit
//  2. Write the index as a tree object
//  3. Resolve HEAD to the parent commit, if any
//  4. Write the commit object
//  5. Advance the current branch (or a detached HEAD)
//  6. Archive the index into last_commit_state and clear it
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	return r.CommitWithSigner(message, author, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is provided.
func (r *Repo) CommitWithSigner(message, author string, signer CommitSigner) (object.Hash, error) {
	unlock, err := r.lock("commit")
	if err != nil {
		return "", err
	}
	defer unlock()

	idx, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if idx.Len() == 0 {
		return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	treeHash, err := r.BuildTree(idx)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	head, err := r.ReadHead()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	parentHash, err := r.ResolveCurrentCommit()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	var parents []object.Hash
	if parentHash != "" {
		parents = append(parents, parentHash)
	}

	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	reason := "commit: " + subject(message)
	if parentHash == "" {
		reason = "commit (initial): " + subject(message)
	}
	switch head.Kind {
	case HeadSymbolic:
		if err := r.updateRef(branchRef(head.Branch), commitHash, reason, expectOld(parentHash)); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	case HeadDirect:
		if err := r.updateRef("HEAD", commitHash, reason, expectOld(head.Hash)); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	default:
		return "", fmt.Errorf("commit: HEAD is empty")
	}

	if err := r.writeIndexFile(lastCommitStateFileName, idx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := r.writeIndexFile(indexFileName, newIndex()); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("committed", "hash", shortHash(commitHash), "branch", head.Branch, "paths", idx.Len())
	return commitHash, nil
}

// subject returns the first line of a commit message.
func subject(message string) string {
	s, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return s
}
