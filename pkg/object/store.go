package object

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type Store struct {
	root string
	algo Algorithm
}

// NewStore creates a Store rooted at the given directory using
// DefaultAlgorithm. The objects/ subdirectory is created lazily on first
// write.
func NewStore(root string) *Store {
	return NewStoreWithAlgorithm(root, DefaultAlgorithm)
}

// NewStoreWithAlgorithm creates a Store that addresses objects with algo.
func NewStoreWithAlgorithm(root string, algo Algorithm) *Store {
	if algo == "" {
		algo = DefaultAlgorithm
	}
	return &Store{root: root, algo: algo}
}

// Algorithm returns the digest algorithm of the store.
func (s *Store) Algorithm() Algorithm {
	return s.algo
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !ValidHash(s.algo, h) {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Digest returns the hash a blob holding data would be stored under,
// without storing it.
func (s *Store) Digest(data []byte) (Hash, error) {
	return HashObject(s.algo, TypeBlob, data)
}

// Write stores an object and returns its content hash. The on-disk format
// is "type len\0content". Writes are atomic: data is written to a temp
// file and then renamed into place. Writing bytes that are already stored
// is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if !objType.Valid() {
		return "", fmt.Errorf("object write: unknown type %q", objType)
	}
	raw := Envelope(objType, data)
	h, err := s.algo.Sum(raw)
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := s.writeRaw(h, raw); err != nil {
		return "", err
	}
	return h, nil
}

func (s *Store) writeRaw(h Hash, raw []byte) error {
	// Fast path: already exists.
	if s.Has(h) {
		return nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

// ReadRaw returns the exact stored bytes of an object, envelope included.
func (s *Store) ReadRaw(h Hash) ([]byte, error) {
	if !ValidHash(s.algo, h) {
		return nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return raw, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	raw, err := s.ReadRaw(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, content, nil
}

// parseEnvelope splits "type len\0content" into its parts.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: no envelope", ErrMalformedObject)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typ, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrMalformedObject, header)
	}
	objType := ObjectType(typ)
	if !objType.Valid() {
		return "", nil, fmt.Errorf("%w: unknown type %q", ErrMalformedObject, typ)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrMalformedObject, lenStr)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrMalformedObject, length, len(content))
	}
	return objType, content, nil
}

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrMalformedObject, objType, want)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// Put stores data as a blob and returns its digest.
func (s *Store) Put(data []byte) (Hash, error) {
	return s.Write(TypeBlob, data)
}

// Get returns the content of the blob stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	return s.readTyped(h, TypeBlob)
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Verification
// ---------------------------------------------------------------------------

// VerifyReport summarizes a full store verification.
type VerifyReport struct {
	Objects int
	ByType  map[ObjectType]int
}

// Verify re-hashes every stored object and checks that its digest matches
// its location and that its envelope and record shape parse.
func (s *Store) Verify() (*VerifyReport, error) {
	report := &VerifyReport{ByType: make(map[ObjectType]int)}
	root := filepath.Join(s.root, "objects")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		want := Hash(strings.ReplaceAll(filepath.ToSlash(rel), "/", ""))

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("verify %s: %w", want, err)
		}
		got, err := s.algo.Sum(raw)
		if err != nil {
			return fmt.Errorf("verify %s: %w", want, err)
		}
		if got != want {
			return fmt.Errorf("verify %s: %w: content hashes to %s", want, ErrMalformedObject, got)
		}
		objType, content, err := parseEnvelope(raw)
		if err != nil {
			return fmt.Errorf("verify %s: %w", want, err)
		}
		switch objType {
		case TypeTree:
			_, err = UnmarshalTree(content)
		case TypeCommit:
			_, err = UnmarshalCommit(content)
		}
		if err != nil {
			return fmt.Errorf("verify %s: %w", want, err)
		}
		report.Objects++
		report.ByType[objType]++
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}
