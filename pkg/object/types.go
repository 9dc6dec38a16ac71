package object

// Hash is a lowercase hex-encoded object digest. Its length depends on the
// repository's digest algorithm (64 characters for sha256).
type Hash string

// ObjectType identifies the kind of object stored. It is persisted in the
// object envelope so readers never have to guess a kind from its shape.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object kinds.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one (digest, path) pair of a flat tree.
type TreeEntry struct {
	Hash Hash
	Path string
}

// TreeObj is a flat path -> object mapping. Entries are serialized sorted by
// Path and paths are unique.
type TreeObj struct {
	Entries []TreeEntry
}

// Map returns the tree as a path -> digest map.
func (t *TreeObj) Map() map[string]Hash {
	m := make(map[string]Hash, len(t.Entries))
	for _, e := range t.Entries {
		m[e.Path] = e.Hash
	}
	return m
}

// TreeFromMap builds a TreeObj from a path -> digest map.
func TreeFromMap(m map[string]Hash) *TreeObj {
	tr := &TreeObj{Entries: make([]TreeEntry, 0, len(m))}
	for p, h := range m {
		tr.Entries = append(tr.Entries, TreeEntry{Hash: h, Path: p})
	}
	return tr
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash // zero, one or two; first parent is the committing branch's previous tip
	Author    string
	Timestamp int64
	Signature string
	Message   string
}
