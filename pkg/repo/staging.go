package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/lit/pkg/object"
)

const (
	indexFileName           = "index"
	lastCommitStateFileName = "last_commit_state"
)

// Index is the staging area: the path -> digest mapping the next commit's
// tree is built from. It is stored as "<digest> <path>" lines sorted by path,
// the same record layout as a tree object.
type Index struct {
	entries map[string]object.Hash
}

// IndexEntry is one staged (digest, path) pair.
type IndexEntry struct {
	Hash object.Hash
	Path string
}

func newIndex() *Index {
	return &Index{entries: make(map[string]object.Hash)}
}

// Len returns the number of staged paths.
func (ix *Index) Len() int { return len(ix.entries) }

// Lookup returns the digest staged for path.
func (ix *Index) Lookup(path string) (object.Hash, bool) {
	h, ok := ix.entries[path]
	return h, ok
}

// Set stages h at path, replacing any earlier entry for the path.
func (ix *Index) Set(path string, h object.Hash) {
	ix.entries[path] = h
}

// Entries returns the staged pairs sorted by path.
func (ix *Index) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(ix.entries))
	for p, h := range ix.entries {
		out = append(out, IndexEntry{Hash: h, Path: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Map returns a copy of the index as a path -> digest map.
func (ix *Index) Map() map[string]object.Hash {
	m := make(map[string]object.Hash, len(ix.entries))
	for p, h := range ix.entries {
		m[p] = h
	}
	return m
}

func (ix *Index) marshal() []byte {
	return object.MarshalTree(object.TreeFromMap(ix.entries))
}

func (r *Repo) readIndexFile(name string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(r.LitDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newIndex(), nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	tr, err := object.UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &Index{entries: tr.Map()}, nil
}

func (r *Repo) writeIndexFile(name string, ix *Index) error {
	if err := writeFileAtomic(filepath.Join(r.LitDir, name), ix.marshal()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadIndex loads .lit/index. A missing file is an empty index.
func (r *Repo) ReadIndex() (*Index, error) {
	return r.readIndexFile(indexFileName)
}

// ReadLastCommitState loads the index snapshot archived by the most recent
// commit.
func (r *Repo) ReadLastCommitState() (*Index, error) {
	return r.readIndexFile(lastCommitStateFileName)
}

// StagedEntries returns the current index entries sorted by path.
func (r *Repo) StagedEntries() ([]IndexEntry, error) {
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}
	return ix.Entries(), nil
}

// AddResult reports the outcome of staging one file.
type AddResult struct {
	Path      string
	Hash      object.Hash
	Unchanged bool // content already staged or committed; nothing written
}

// Add stages the file at path. Relative paths are resolved against the
// working root. Re-adding content that is already in the index, or that the
// last commit recorded for the same path, writes nothing.
func (r *Repo) Add(path string) (*AddResult, error) {
	unlock, err := r.lock("add")
	if err != nil {
		return nil, err
	}
	defer unlock()

	idx, last, err := r.readStagingPair()
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	res, err := r.addLocked(idx, last, path)
	if err != nil {
		return nil, err
	}
	if !res.Unchanged {
		if err := r.writeIndexFile(indexFileName, idx); err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
	}
	return res, nil
}

// AddAll stages every regular file directly under the working root, skipping
// dot-files, the .lit directory and paths matched by .litignore.
func (r *Repo) AddAll() ([]AddResult, error) {
	unlock, err := r.lock("add")
	if err != nil {
		return nil, err
	}
	defer unlock()

	idx, last, err := r.readStagingPair()
	if err != nil {
		return nil, fmt.Errorf("add all: %w", err)
	}
	dirEntries, err := os.ReadDir(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("add all: %w", err)
	}
	ignore := NewIgnoreChecker(r.RootDir)

	var results []AddResult
	changed := false
	for _, e := range dirEntries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !e.Type().IsRegular() || ignore.IsIgnored(name) {
			continue
		}
		res, err := r.addLocked(idx, last, name)
		if err != nil {
			return nil, err
		}
		changed = changed || !res.Unchanged
		results = append(results, *res)
	}
	if changed {
		if err := r.writeIndexFile(indexFileName, idx); err != nil {
			return nil, fmt.Errorf("add all: %w", err)
		}
	}
	return results, nil
}

func (r *Repo) readStagingPair() (*Index, *Index, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, nil, err
	}
	last, err := r.ReadLastCommitState()
	if err != nil {
		return nil, nil, err
	}
	return idx, last, nil
}

func (r *Repo) addLocked(idx, last *Index, path string) (*AddResult, error) {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return nil, fmt.Errorf("add %q: %w", path, err)
	}
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("add %q: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("add %q: not a regular file", rel)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("add %q: %w", rel, err)
	}
	h, err := r.Store.Digest(data)
	if err != nil {
		return nil, fmt.Errorf("add %q: %w", rel, err)
	}

	staged, inIndex := idx.Lookup(rel)
	committed, inLast := last.Lookup(rel)
	if (inIndex && staged == h) || (!inIndex && inLast && committed == h) {
		r.logger.Debug("no changes detected", "path", rel)
		return &AddResult{Path: rel, Hash: h, Unchanged: true}, nil
	}

	if _, err := r.Store.Put(data); err != nil {
		return nil, fmt.Errorf("add %q: %w", rel, err)
	}
	idx.Set(rel, h)
	r.logger.Debug("staged", "path", rel, "hash", shortHash(h))
	return &AddResult{Path: rel, Hash: h}, nil
}

// repoRelPath converts path to a clean slash-separated path relative to the
// working root, rejecting paths outside it or inside .lit.
func (r *Repo) repoRelPath(path string) (string, error) {
	if strings.ContainsAny(path, "\n\r") {
		return "", fmt.Errorf("path contains a line break")
	}
	rel := path
	if filepath.IsAbs(path) {
		var err error
		if rel, err = filepath.Rel(r.RootDir, path); err != nil {
			return "", err
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	switch {
	case rel == "." || rel == "":
		return "", fmt.Errorf("path names the repository root")
	case rel == ".." || strings.HasPrefix(rel, "../"):
		return "", fmt.Errorf("path is outside the repository")
	case rel == litDirName || strings.HasPrefix(rel, litDirName+"/"):
		return "", fmt.Errorf("path is inside %s", litDirName)
	}
	return rel, nil
}

// ComputeDigest returns the digest content would be stored under as a blob.
func (r *Repo) ComputeDigest(content []byte) string {
	// The algorithm was validated when the repository was opened.
	h, _ := r.Store.Digest(content)
	return string(h)
}

// ObjectExists reports whether an object with the given digest is stored.
func (r *Repo) ObjectExists(digest string) bool {
	return r.Store.Has(object.Hash(digest))
}

// StoreObject stores content as a blob and returns its digest.
func (r *Repo) StoreObject(content []byte) (object.Hash, error) {
	return r.Store.Put(content)
}
