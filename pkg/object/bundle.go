package object

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	bundleMagic   = "LITBUNDLE"
	bundleVersion = 1
)

// maxBundleObjectSize bounds the declared length of a single bundle entry.
var maxBundleObjectSize int64 = 1 << 30

// ErrBadBundle is returned when a bundle stream cannot be decoded.
var ErrBadBundle = errors.New("bad bundle")

// BundleStats reports how many objects a bundle operation touched.
type BundleStats struct {
	Objects int // objects in the bundle
	Written int // objects newly written to the store (unbundle only)
}

// WriteBundle streams every object reachable from roots to w as a
// zstd-compressed bundle:
//
//	LITBUNDLE 1 <algorithm> <count>\n
//	<digest> <len>\n<raw stored bytes>   (count times)
//
// Objects are emitted in digest order so equal inputs yield equal bundles.
func (s *Store) WriteBundle(w io.Writer, roots []Hash) (*BundleStats, error) {
	set, err := s.ReachableSet(roots)
	if err != nil {
		return nil, fmt.Errorf("write bundle: %w", err)
	}
	hashes := make([]Hash, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("write bundle: zstd: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if _, err := fmt.Fprintf(bw, "%s %d %s %d\n", bundleMagic, bundleVersion, s.algo, len(hashes)); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write bundle header: %w", err)
	}
	for _, h := range hashes {
		raw, err := s.ReadRaw(h)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("write bundle: %w", err)
		}
		if _, err := fmt.Fprintf(bw, "%s %d\n", h, len(raw)); err != nil {
			enc.Close()
			return nil, fmt.Errorf("write bundle %s: %w", h, err)
		}
		if _, err := bw.Write(raw); err != nil {
			enc.Close()
			return nil, fmt.Errorf("write bundle %s: %w", h, err)
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write bundle flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("write bundle close: %w", err)
	}
	return &BundleStats{Objects: len(hashes)}, nil
}

// ReadBundle imports a bundle produced by WriteBundle. Every object is
// re-hashed before it is stored; a digest mismatch aborts the import.
func (s *Store) ReadBundle(r io.Reader) (*BundleStats, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read bundle: zstd: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read bundle header: %w: %v", ErrBadBundle, err)
	}
	fields := strings.Fields(header)
	if len(fields) != 4 || fields[0] != bundleMagic || fields[1] != strconv.Itoa(bundleVersion) {
		return nil, fmt.Errorf("read bundle: %w: header %q", ErrBadBundle, strings.TrimSpace(header))
	}
	if Algorithm(fields[2]) != s.algo {
		return nil, fmt.Errorf("read bundle: %w: bundle uses %s, repository uses %s", ErrBadBundle, fields[2], s.algo)
	}
	count, err := strconv.Atoi(fields[3])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("read bundle: %w: count %q", ErrBadBundle, fields[3])
	}

	stats := &BundleStats{Objects: count}
	for i := 0; i < count; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read bundle entry %d: %w: %v", i, ErrBadBundle, err)
		}
		hs, ls, ok := strings.Cut(strings.TrimSuffix(line, "\n"), " ")
		if !ok {
			return nil, fmt.Errorf("read bundle entry %d: %w: %q", i, ErrBadBundle, line)
		}
		want := Hash(hs)
		if !ValidHash(s.algo, want) {
			return nil, fmt.Errorf("read bundle entry %d: %w: digest %q", i, ErrBadBundle, hs)
		}
		size, err := strconv.ParseInt(ls, 10, 64)
		if err != nil || size < 0 || size > maxBundleObjectSize {
			return nil, fmt.Errorf("read bundle entry %d: %w: length %q", i, ErrBadBundle, ls)
		}
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, br, size); err != nil {
			return nil, fmt.Errorf("read bundle entry %d: %w: %v", i, ErrBadBundle, err)
		}
		raw := buf.Bytes()

		got, err := s.algo.Sum(raw)
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", want, err)
		}
		if got != want {
			return nil, fmt.Errorf("read bundle %s: %w: content hashes to %s", want, ErrBadBundle, got)
		}
		if _, _, err := parseEnvelope(raw); err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", want, err)
		}
		if s.Has(want) {
			continue
		}
		if err := s.writeRaw(want, raw); err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", want, err)
		}
		stats.Written++
	}
	return stats, nil
}
