package deb

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"sort"

	"github.com/ulikunitz/xz"
)

// FileToUpload is one file the generator produced: its destination path
// relative to the repository root, and its exact byte content.
type FileToUpload struct {
	Path string
	Data []byte
}

// CompressionErrorKind distinguishes which compressor failed while building
// an index variant.
type CompressionErrorKind int

const (
	ErrGzip CompressionErrorKind = iota
	ErrXz
)

// CompressionError reports a compression failure while rendering an index
// file variant.
type CompressionError struct {
	Kind CompressionErrorKind
	Path string
	Err  error
}

func (e *CompressionError) Error() string {
	alg := "gzip"
	if e.Kind == ErrXz {
		alg = "xz"
	}
	return fmt.Sprintf("index: %s compression of %s: %v", alg, e.Path, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// BuildIndexes groups packages by architecture and renders the three
// on-disk variants (plain, gzip, xz) of each architecture's Packages index.
// Stanza order within an architecture follows packages' input order.
// Architecture processing order is unspecified by the format; this
// implementation sorts architectures lexically so a given package set
// always renders the same output.
func BuildIndexes(packages []*Package) ([]FileToUpload, error) {
	order := make([]string, 0)
	grouped := make(map[string][]*Package)
	for _, p := range packages {
		if _, seen := grouped[p.Architecture]; !seen {
			order = append(order, p.Architecture)
		}
		grouped[p.Architecture] = append(grouped[p.Architecture], p)
	}
	sort.Strings(order)

	var out []FileToUpload
	for _, arch := range order {
		text, err := renderPackagesText(grouped[arch])
		if err != nil {
			return nil, err
		}

		plainPath := fmt.Sprintf("main/binary-%s/Packages", arch)
		gzPath := plainPath + ".gz"
		xzPath := plainPath + ".xz"

		gzData, err := gzipBest(text)
		if err != nil {
			return nil, &CompressionError{Kind: ErrGzip, Path: gzPath, Err: err}
		}
		xzData, err := xzLevel9(text)
		if err != nil {
			return nil, &CompressionError{Kind: ErrXz, Path: xzPath, Err: err}
		}

		out = append(out,
			FileToUpload{Path: plainPath, Data: text},
			FileToUpload{Path: gzPath, Data: gzData},
			FileToUpload{Path: xzPath, Data: xzData},
		)
	}
	return out, nil
}

// renderPackagesText concatenates each package's stanza followed by a
// blank line, including after the last stanza.
func renderPackagesText(packages []*Package) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range packages {
		if err := p.WriteStanza(&buf); err != nil {
			return nil, err
		}
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), nil
}

func gzipBest(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xzLevel9 compresses data at the library's maximum dictionary size, the
// closest equivalent ulikunitz/xz exposes to xz(1)'s "-9" preset.
func xzLevel9(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	cfg := xz.WriterConfig{DictCap: 64 << 20}
	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
