package deb

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReleaseMetadata is the set of free-form fields an operator configures for
// a repository; Date is always produced at generation time, never read
// from configuration.
type ReleaseMetadata struct {
	Origin      string
	Label       string
	Suite       string
	Codename    string
	Version     string
	Description string
}

var archFromIndexPath = regexp.MustCompile(`^main/binary-([^/]+)/`)

// HashFileError reports a hashing failure over an already-rendered index
// buffer. With in-memory buffers this cannot actually happen; it exists so
// the failure would surface with its path if the buffering ever changes.
type HashFileError struct {
	Path string
	Err  error
}

func (e *HashFileError) Error() string {
	return fmt.Sprintf("release: hashing %s: %v", e.Path, e.Err)
}

func (e *HashFileError) Unwrap() error { return e.Err }

// BuildRelease renders the top-level Release manifest text. indexFiles must
// be exactly the per-architecture Packages/.gz/.xz entries produced by
// BuildIndexes, in production order; that same order drives both the
// Architectures line and all three hash sections.
func BuildRelease(meta ReleaseMetadata, indexFiles []FileToUpload, date time.Time) ([]byte, error) {
	var archs []string
	for _, f := range indexFiles {
		m := archFromIndexPath.FindStringSubmatch(f.Path)
		if m == nil {
			return nil, fmt.Errorf("release: %q is not a per-architecture index path", f.Path)
		}
		archs = append(archs, m[1])
	}

	type hashed struct {
		path string
		size int64
		sums FileSums
	}
	rows := make([]hashed, 0, len(indexFiles))
	for _, f := range indexFiles {
		n, sums, err := HashStream(bytes.NewReader(f.Data))
		if err != nil {
			return nil, &HashFileError{Path: f.Path, Err: err}
		}
		rows = append(rows, hashed{path: f.Path, size: n, sums: sums})
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Origin: %s\n", meta.Origin)
	fmt.Fprintf(&buf, "Label: %s\n", meta.Label)
	fmt.Fprintf(&buf, "Suite: %s\n", meta.Suite)
	fmt.Fprintf(&buf, "Version: %s\n", meta.Version)
	fmt.Fprintf(&buf, "Codename: %s\n", meta.Codename)
	fmt.Fprintf(&buf, "Date: %s\n", date.In(time.UTC).Format("Mon, 02 Jan 2006 15:04:05 UTC"))
	fmt.Fprintf(&buf, "Architectures: %s\n", strings.Join(archs, " "))
	buf.WriteString("Components: main\n")
	buf.WriteString("Acquire-By-Hash: no\n")
	buf.WriteString("Changelogs: no\n")
	buf.WriteString("Snapshots: no\n")

	buf.WriteString("MD5Sum:\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, " %x %d %s\n", row.sums.MD5, row.size, row.path)
	}
	buf.WriteString("SHA1:\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, " %x %d %s\n", row.sums.SHA1, row.size, row.path)
	}
	buf.WriteString("SHA256:\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, " %x %d %s\n", row.sums.SHA256, row.size, row.path)
	}

	return buf.Bytes(), nil
}
