package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ArchiveErrorKind distinguishes the ways a .deb's ar/tar/compression
// layers can fail to yield a control file.
type ArchiveErrorKind int

const (
	ErrNoControlBundle ArchiveErrorKind = iota
	ErrNoControlFile
	ErrUnsupportedCompression
	ErrCorrupt
)

// ArchiveError reports a failure extracting the control file from a .deb.
type ArchiveError struct {
	Kind ArchiveErrorKind
	Name string
	Err  error
}

func (e *ArchiveError) Error() string {
	switch e.Kind {
	case ErrNoControlBundle:
		return "archive: no control.tar* member found"
	case ErrNoControlFile:
		return "archive: control.tar* has no control file"
	case ErrUnsupportedCompression:
		return fmt.Sprintf("archive: unsupported compression for %q", e.Name)
	case ErrCorrupt:
		return fmt.Sprintf("archive: %s: %v", e.Name, e.Err)
	default:
		return "archive: error"
	}
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// ExtractControl reads the ar container of a .deb package, locates its
// control member (control.tar, .tar.gz, .tar.xz, or .tar.zst), and returns
// the text of the control file found inside it.
func ExtractControl(r io.Reader) (string, error) {
	arR := ar.NewReader(r)

	for {
		header, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ArchiveError{Kind: ErrCorrupt, Name: "ar", Err: err}
		}

		kind, ok := controlTarNames[header.Name]
		if !ok {
			continue
		}

		raw := make([]byte, header.Size)
		if _, err := io.ReadFull(arR, raw); err != nil {
			return "", &ArchiveError{Kind: ErrCorrupt, Name: header.Name, Err: err}
		}

		tr, err := openTar(kind, header.Name, raw)
		if err != nil {
			return "", err
		}

		text, err := readControlMember(tr, header.Name)
		if err != nil {
			return "", err
		}
		return text, nil
	}

	return "", &ArchiveError{Kind: ErrNoControlBundle}
}

// openTar wraps raw in the decompressor kind requires and returns a tar
// reader over the resulting byte stream.
func openTar(kind compressionKind, name string, raw []byte) (*tar.Reader, error) {
	body := bytes.NewReader(raw)

	switch kind {
	case compressionNone:
		return tar.NewReader(body), nil

	case compressionGzip:
		gzr, err := gzip.NewReader(body)
		if err != nil {
			return nil, &ArchiveError{Kind: ErrCorrupt, Name: name, Err: err}
		}
		return tar.NewReader(gzr), nil

	case compressionXz:
		xzr, err := xz.NewReader(body)
		if err != nil {
			return nil, &ArchiveError{Kind: ErrCorrupt, Name: name, Err: err}
		}
		return tar.NewReader(xzr), nil

	case compressionZstd:
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, &ArchiveError{Kind: ErrCorrupt, Name: name, Err: err}
		}
		return tar.NewReader(zr), nil

	default:
		return nil, &ArchiveError{Kind: ErrUnsupportedCompression, Name: name}
	}
}

// readControlMember walks tr looking for a top-level file named "control"
// and returns its full text.
func readControlMember(tr *tar.Reader, bundleName string) (string, error) {
	for {
		th, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ArchiveError{Kind: ErrCorrupt, Name: bundleName, Err: err}
		}
		if th.Typeflag != tar.TypeReg {
			continue
		}
		if th.Name != "control" && th.Name != "./control" {
			continue
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return "", &ArchiveError{Kind: ErrCorrupt, Name: bundleName, Err: err}
		}
		return buf.String(), nil
	}
	return "", &ArchiveError{Kind: ErrNoControlFile, Name: bundleName}
}
