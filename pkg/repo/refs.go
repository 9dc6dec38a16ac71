package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/lit/pkg/object"
)

const (
	symbolicPrefix = "ref: "
	headsPrefix    = "refs/heads/"
)

func branchRef(name string) string {
	return headsPrefix + name
}

// HeadKind distinguishes the forms HEAD can take.
type HeadKind int

const (
	HeadEmpty    HeadKind = iota // HEAD file missing or blank
	HeadSymbolic                 // "ref: refs/heads/<branch>"
	HeadDirect                   // a literal commit digest (detached)
)

// HeadValue is the parsed content of HEAD.
type HeadValue struct {
	Kind   HeadKind
	Branch string      // set for HeadSymbolic
	Hash   object.Hash // set for HeadDirect
}

func (h HeadValue) String() string {
	switch h.Kind {
	case HeadSymbolic:
		return symbolicPrefix + branchRef(h.Branch)
	case HeadDirect:
		return string(h.Hash)
	}
	return ""
}

// ReadHead reads .lit/HEAD.
func (r *Repo) ReadHead() (HeadValue, error) {
	data, err := os.ReadFile(filepath.Join(r.LitDir, "HEAD"))
	if err != nil {
		if os.IsNotExist(err) {
			return HeadValue{Kind: HeadEmpty}, nil
		}
		return HeadValue{}, fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	switch {
	case content == "":
		return HeadValue{Kind: HeadEmpty}, nil
	case strings.HasPrefix(content, symbolicPrefix):
		ref := strings.TrimSpace(strings.TrimPrefix(content, symbolicPrefix))
		return HeadValue{Kind: HeadSymbolic, Branch: strings.TrimPrefix(ref, headsPrefix)}, nil
	default:
		return HeadValue{Kind: HeadDirect, Hash: object.Hash(content)}, nil
	}
}

// SetHead atomically replaces HEAD.
func (r *Repo) SetHead(h HeadValue) error {
	if h.Kind == HeadSymbolic {
		if err := ValidateBranchName(h.Branch); err != nil {
			return fmt.Errorf("set HEAD: %w", err)
		}
	}
	old, err := r.ReadHead()
	if err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(r.LitDir, "HEAD"), []byte(h.String()+"\n")); err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	r.logger.Debug("HEAD moved", "from", old.String(), "to", h.String())
	return nil
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is
// detached or empty.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.ReadHead()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if head.Kind != HeadSymbolic {
		return "", nil
	}
	return head.Branch, nil
}

// ReadBranch returns the tip of a branch. exists is false when no ref file is
// present; an empty ref file exists but has no commits yet and yields "".
func (r *Repo) ReadBranch(name string) (tip object.Hash, exists bool, err error) {
	if err := ValidateBranchName(name); err != nil {
		return "", false, fmt.Errorf("read branch: %w", err)
	}
	refPath := filepath.Join(r.LitDir, filepath.FromSlash(branchRef(name)))
	if _, err := os.Stat(refPath); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read branch %q: %w", name, err)
	}
	h, err := readRefHash(refPath)
	if err != nil {
		return "", false, fmt.Errorf("read branch %q: %w", name, err)
	}
	return h, true, nil
}

// WriteBranch creates or moves a branch to h.
func (r *Repo) WriteBranch(name string, h object.Hash, reason string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("write branch: %w", err)
	}
	return r.updateRef(branchRef(name), h, reason, nil)
}

// ResolveCurrentCommit resolves HEAD through at most one level of symbolic
// indirection. It returns "" when the current branch has no commits yet.
func (r *Repo) ResolveCurrentCommit() (object.Hash, error) {
	head, err := r.ReadHead()
	if err != nil {
		return "", err
	}
	switch head.Kind {
	case HeadDirect:
		return head.Hash, nil
	case HeadSymbolic:
		tip, _, err := r.ReadBranch(head.Branch)
		return tip, err
	}
	return "", nil
}

// ResolveRevision resolves HEAD, a branch name, a full digest or an
// unambiguous digest prefix of at least four characters to a commit-ish
// digest.
func (r *Repo) ResolveRevision(rev string) (object.Hash, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" || rev == "HEAD" {
		h, err := r.ResolveCurrentCommit()
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", rev, err)
		}
		if h == "" {
			return "", fmt.Errorf("resolve HEAD: no commits yet: %w", ErrNotFound)
		}
		return h, nil
	}

	if ValidateBranchName(rev) == nil {
		tip, exists, err := r.ReadBranch(rev)
		if err != nil {
			return "", err
		}
		if exists {
			if tip == "" {
				return "", fmt.Errorf("resolve %q: branch has no commits: %w", rev, ErrNotFound)
			}
			return tip, nil
		}
	}

	h := object.Hash(strings.ToLower(rev))
	if r.Store.Has(h) {
		return h, nil
	}
	return r.resolvePrefix(rev)
}

func (r *Repo) resolvePrefix(prefix string) (object.Hash, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 4 || strings.Trim(prefix, "0123456789abcdef") != "" {
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}
	entries, err := os.ReadDir(filepath.Join(r.LitDir, "objects", prefix[:2]))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
		}
		return "", fmt.Errorf("resolve %q: %w", prefix, err)
	}
	var match object.Hash
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix[2:]) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("resolve %q: ambiguous digest prefix", prefix)
		}
		match = object.Hash(prefix[:2] + e.Name())
	}
	if match == "" {
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}
	return match, nil
}

// refCheck validates the current state of a ref while its lock is held.
type refCheck func(old object.Hash, exists bool) error

func expectOld(want object.Hash) refCheck {
	return func(old object.Hash, _ bool) error {
		if old != want {
			return fmt.Errorf("%w (expected %s, found %s)", ErrRefCASMismatch, want, old)
		}
		return nil
	}
}

func mustNotExist(old object.Hash, exists bool) error {
	if exists {
		return ErrAlreadyExists
	}
	return nil
}

// updateRef writes h to the named ref under .lit/ using lockfile + rename
// so a partially written ref is never observable. check, when non-nil, runs
// against the locked old value. The reflog append happens after the rename;
// if it fails the ref update stands and a RefUpdateReflogError is returned.
func (r *Repo) updateRef(name string, h object.Hash, reason string, check refCheck) error {
	refPath := filepath.Join(r.LitDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireLockFile(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	_, statErr := os.Stat(refPath)
	exists := statErr == nil
	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if check != nil {
		if err := check(oldHash, exists); err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}
	}

	content := ""
	if h != "" {
		content = string(h) + "\n"
	}
	if _, err := lockFile.WriteString(content); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false
	r.logger.Debug("ref updated", "ref", name, "old", shortHash(oldHash), "new", shortHash(h), "reason", reason)

	if oldHash == h && exists {
		return nil
	}
	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{Ref: name, OldHash: oldHash, NewHash: h, Err: err}
	}
	return nil
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

func shortHash(h object.Hash) string {
	if len(h) > 12 {
		return string(h[:12])
	}
	return string(h)
}
