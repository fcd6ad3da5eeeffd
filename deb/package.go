package deb

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// DerivedMeta holds the fields the generator computes from a package's raw
// bytes rather than reading from its control file: where it sits in the
// pool, how big it is, its three digests, and the Description-md5 value APT
// clients use to detect changed long descriptions without refetching them.
type DerivedMeta struct {
	Filename       string
	Size           int64
	DescriptionMD5 string
	Sums           FileSums
}

// Package is a single validated .deb, ready to be written into a Packages
// index. Fields carries every control-file field in its original order;
// Meta carries everything computed from the archive bytes.
type Package struct {
	Name         string
	Version      string
	Architecture string
	Fields       Fields
	Meta         DerivedMeta
}

// NewPackage validates fields, hashes r, and combines the two into a
// Package whose pool path follows pool/main/{name}_{version}_{arch}.deb.
//
// r must be positioned at the start of the package's raw bytes; NewPackage
// consumes it fully.
func NewPackage(fields Fields, r io.Reader) (*Package, error) {
	if err := Validate(fields); err != nil {
		return nil, err
	}

	// Parsed values are raw spans including the space after the colon and
	// the terminating newline; the identity fields are used in paths and
	// must be the bare words.
	rawName, _ := fieldFold(fields, FieldPackage.String())
	rawVersion, _ := fieldFold(fields, FieldVersion.String())
	rawArch, _ := fieldFold(fields, FieldArchitecture.String())
	name := strings.TrimSpace(rawName)
	version := strings.TrimSpace(rawVersion)
	arch := strings.TrimSpace(rawArch)

	size, sums, err := HashStream(r)
	if err != nil {
		return nil, err
	}

	return &Package{
		Name:         name,
		Version:      version,
		Architecture: arch,
		Fields:       fields,
		Meta: DerivedMeta{
			Filename:       poolPath(name, version, arch),
			Size:           size,
			DescriptionMD5: descriptionMD5(fields),
			Sums:           sums,
		},
	}, nil
}

// poolPath returns the canonical on-disk location of a package's .deb file
// relative to the repository root.
func poolPath(name, version, arch string) string {
	return fmt.Sprintf("pool/main/%s_%s_%s.deb", name, version, arch)
}

// descriptionMD5 is the MD5 of a package's Description value starting at its
// second byte, dropping the single leading space every Description value
// carries after its colon. A package with no Description hashes the empty
// string.
func descriptionMD5(fields Fields) string {
	desc, ok := fieldFold(fields, FieldDescription.String())
	var sum [md5.Size]byte
	if ok && len(desc) >= 1 {
		sum = md5.Sum([]byte(desc[1:]))
	} else {
		sum = md5.Sum(nil)
	}
	return hex.EncodeToString(sum[:])
}

// WriteStanza renders p as one Packages-file stanza: every source field in
// its original order (trimmed of surrounding whitespace), followed by the
// derived fields in the fixed order APT expects them. The stanza has no
// trailing newline after its last field; callers join stanzas with "\n\n".
func (p *Package) WriteStanza(w io.Writer) error {
	for pair := p.Fields.Oldest(); pair != nil; pair = pair.Next() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", pair.Key, strings.TrimSpace(pair.Value)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Filename: %s\nSize: %d\nDescription-md5: %s\nMD5sum: %s\nSHA1: %s\nSHA256: %s",
		p.Meta.Filename,
		p.Meta.Size,
		p.Meta.DescriptionMD5,
		hex.EncodeToString(p.Meta.Sums.MD5[:]),
		hex.EncodeToString(p.Meta.Sums.SHA1[:]),
		hex.EncodeToString(p.Meta.Sums.SHA256[:]),
	)
	return err
}
