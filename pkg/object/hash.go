package object

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/multiformats/go-multihash"
)

// Algorithm names the digest function a repository addresses objects with.
// It is fixed when the repository is initialized.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA1   Algorithm = "sha1"
	BLAKE3 Algorithm = "blake3"

	DefaultAlgorithm = SHA256
)

// ParseAlgorithm maps a configuration string to an Algorithm. The empty
// string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return DefaultAlgorithm, nil
	case SHA256, SHA1, BLAKE3:
		return a, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (want sha256, sha1 or blake3)", s)
	}
}

func (a Algorithm) multihashCode() (uint64, error) {
	switch a {
	case SHA256, "":
		return multihash.SHA2_256, nil
	case SHA1:
		return multihash.SHA1, nil
	case BLAKE3:
		return multihash.BLAKE3, nil
	}
	return 0, fmt.Errorf("unknown hash algorithm %q", string(a))
}

// HexLen is the length of a hex digest produced by a.
func (a Algorithm) HexLen() int {
	if a == SHA1 {
		return 40
	}
	return 64
}

// Sum hashes data with a and returns the lowercase hex digest.
func (a Algorithm) Sum(data []byte) (Hash, error) {
	code, err := a.multihashCode()
	if err != nil {
		return "", err
	}
	mh, err := multihash.Sum(data, code, -1)
	if err != nil {
		return "", fmt.Errorf("multihash %s: %w", a, err)
	}
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("multihash decode %s: %w", a, err)
	}
	return Hash(hex.EncodeToString(decoded.Digest)), nil
}

// HashBytes computes the DefaultAlgorithm digest of data.
func HashBytes(data []byte) Hash {
	h, err := DefaultAlgorithm.Sum(data)
	if err != nil {
		// sha2-256 is always registered with go-multihash.
		panic(err)
	}
	return h
}

// Envelope returns the stored representation "type len\0content". An
// object's digest is the digest of exactly these bytes.
func Envelope(objType ObjectType, data []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := make([]byte, 0, len(header)+len(data))
	raw = append(raw, header...)
	return append(raw, data...)
}

// HashObject computes the digest of the envelope for objType and data
// using a.
func HashObject(a Algorithm, objType ObjectType, data []byte) (Hash, error) {
	return a.Sum(Envelope(objType, data))
}

// ValidHash reports whether h looks like a digest produced by a.
func ValidHash(a Algorithm, h Hash) bool {
	if len(h) != a.HexLen() {
		return false
	}
	for _, c := range string(h) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
