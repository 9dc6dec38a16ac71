package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj as one "<digest> <path>" line per entry,
// sorted by path. When the same path appears more than once the last entry
// wins.
func MarshalTree(tr *TreeObj) []byte {
	byPath := make(map[string]Hash, len(tr.Entries))
	for _, e := range tr.Entries {
		byPath[e.Path] = e.Hash
	}
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	for _, p := range paths {
		fmt.Fprintf(&buf, "%s %s\n", byPath[p], p)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form. Each record is
// split on its first space so paths may contain spaces.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		h, p, ok := strings.Cut(line, " ")
		if !ok || h == "" || p == "" {
			return nil, fmt.Errorf("unmarshal tree: %w: entry %q", ErrMalformedObject, line)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("unmarshal tree: %w: duplicate path %q", ErrMalformedObject, p)
		}
		seen[p] = struct{}{}
		tr.Entries = append(tr.Entries, TreeEntry{Hash: Hash(h), Path: p})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H        (zero to two)
//	author A
//	timestamp T     (omitted when zero)
//	signature S     (optional)
//	message M...
//
// The message record is always last and runs to the end of the content, so
// it may contain line breaks.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", oneLine(c.Author))
	if c.Timestamp != 0 {
		fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	}
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", oneLine(c.Signature))
	}
	buf.WriteString("message ")
	buf.WriteString(c.Message)
	return buf.Bytes()
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// UnmarshalCommit parses a CommitObj from its serialized form. It fails with
// ErrMalformedObject when the tree, author or message record is missing or
// more than two parents are listed.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	text := string(data)
	c := &CommitObj{}
	var haveTree, haveAuthor, haveMessage bool

	for text != "" {
		line, rest, _ := strings.Cut(text, "\n")
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: header line %q", ErrMalformedObject, line)
		}
		if key == "message" {
			// The message consumes everything after "message ".
			c.Message = text[len("message "):]
			haveMessage = true
			break
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
			haveTree = val != ""
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
			haveAuthor = true
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w: bad timestamp %q", ErrMalformedObject, val)
			}
			c.Timestamp = ts
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: %w: unknown field %q", ErrMalformedObject, key)
		}
		text = rest
	}

	switch {
	case !haveTree:
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree", ErrMalformedObject)
	case !haveAuthor:
		return nil, fmt.Errorf("unmarshal commit: %w: missing author", ErrMalformedObject)
	case !haveMessage:
		return nil, fmt.Errorf("unmarshal commit: %w: missing message", ErrMalformedObject)
	case len(c.Parents) > 2:
		return nil, fmt.Errorf("unmarshal commit: %w: %d parents", ErrMalformedObject, len(c.Parents))
	}
	return c, nil
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature field itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}
