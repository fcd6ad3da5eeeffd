package repogen

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/etnz/debrepod/deb"
)

// WalkedPackage pairs a validated package with the filesystem path it was
// read from, so a caller that also needs to copy the original archive bytes
// into the pool (the CLI does; the core never touches disk) doesn't have to
// re-derive the pool path from scratch.
type WalkedPackage struct {
	Package    *deb.Package
	SourcePath string
}

// WalkPackages recursively scans dir, running every regular file through
// the extract/parse/validate/hash pipeline. A file that fails any stage
// aborts the walk: one bad package aborts the whole regeneration, it is
// never silently left out of the index. Packages are returned in the order
// their files were visited.
func WalkPackages(dir string, listener Listener) ([]WalkedPackage, error) {
	var packages []WalkedPackage

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			emit(listener, EventPackageRejected{Path: path, Error: err.Error()})
			return fmt.Errorf("read %s: %w", path, err)
		}

		p, err := readPackage(raw)
		if err != nil {
			emit(listener, EventPackageRejected{Path: path, Error: err.Error()})
			return fmt.Errorf("%s: %w", path, err)
		}

		emit(listener, EventPackageAccepted{
			Path:         path,
			Package:      p.Name,
			Version:      p.Version,
			Architecture: p.Architecture,
		})
		packages = append(packages, WalkedPackage{Package: p, SourcePath: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repogen: walk %s: %w", dir, err)
	}
	return packages, nil
}

// Packages extracts the validated *deb.Package out of each WalkedPackage, in
// the same order, for handing to GenerateRepository.
func Packages(walked []WalkedPackage) []*deb.Package {
	out := make([]*deb.Package, len(walked))
	for i, w := range walked {
		out[i] = w.Package
	}
	return out
}

// readPackage runs the extract/parse/validate/hash pipeline over one .deb's
// raw bytes.
func readPackage(raw []byte) (*deb.Package, error) {
	controlText, err := deb.ExtractControl(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	fields, err := deb.ParseControl(controlText)
	if err != nil {
		return nil, err
	}
	return deb.NewPackage(fields, bytes.NewReader(raw))
}

// GenerateRepository renders the full set of generated repository files
// (per-architecture indexes, Release, InRelease, Release.gpg, and the
// public keyring) from a release configuration, a signing key, and a list
// of already-validated packages. It does not write anything to pool/main —
// that is the caller's responsibility, since the generator never touches
// the original uploaded bytes.
func GenerateRepository(meta deb.ReleaseMetadata, armoredKey string, packages []*deb.Package, now time.Time, listener Listener) ([]deb.FileToUpload, error) {
	indexFiles, err := deb.BuildIndexes(packages)
	if err != nil {
		return nil, err
	}
	counts := countByArchitecture(packages)
	for _, arch := range archKeysSorted(counts) {
		emit(listener, EventIndexBuilt{Architecture: arch, PackageCount: counts[arch]})
	}

	releaseText, err := deb.BuildRelease(meta, indexFiles, now)
	if err != nil {
		return nil, err
	}

	signed, err := deb.SignRelease(releaseText, armoredKey)
	if err != nil {
		return nil, err
	}

	out := make([]deb.FileToUpload, 0, len(indexFiles)+4)
	out = append(out, indexFiles...)
	out = append(out,
		deb.FileToUpload{Path: "Release", Data: releaseText},
		deb.FileToUpload{Path: "InRelease", Data: signed.InRelease},
		deb.FileToUpload{Path: "Release.gpg", Data: signed.ReleaseGPG},
		deb.FileToUpload{Path: "deriv-archive-keyring.pgp", Data: signed.Keyring},
	)

	if err := checkUniquePaths(out); err != nil {
		return nil, err
	}

	emit(listener, EventReleaseSigned{FileCount: len(out)})
	return out, nil
}

func countByArchitecture(packages []*deb.Package) map[string]int {
	counts := make(map[string]int)
	for _, p := range packages {
		counts[p.Architecture]++
	}
	return counts
}

// archKeysSorted is used only to keep event emission order deterministic
// across runs with the same package set.
func archKeysSorted(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkUniquePaths(files []deb.FileToUpload) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Path] {
			return fmt.Errorf("repogen: duplicate output path %q", f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}
