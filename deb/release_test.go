package deb

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestBuildReleaseFieldOrderAndHashSections(t *testing.T) {
	p := mustPackage(t, "Package: a\nVersion: 1\nArchitecture: amd64\nMaintainer: m\nDescription: d\n")
	files, err := BuildIndexes([]*Package{p})
	if err != nil {
		t.Fatalf("BuildIndexes: %v", err)
	}

	meta := ReleaseMetadata{Origin: "o", Label: "l", Suite: "s", Codename: "c", Version: "1", Description: "unused"}
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	release, err := BuildRelease(meta, files, date)
	if err != nil {
		t.Fatalf("BuildRelease: %v", err)
	}
	text := string(release)

	for _, line := range []string{
		"Origin: o\n", "Label: l\n", "Suite: s\n", "Version: 1\n", "Codename: c\n",
		"Date: Fri, 02 Jan 2026 03:04:05 UTC\n",
		"Architectures: amd64 amd64 amd64\n",
		"Components: main\n", "Acquire-By-Hash: no\n", "Changelogs: no\n", "Snapshots: no\n",
		"MD5Sum:\n", "SHA1:\n", "SHA256:\n",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("release text missing %q:\n%s", line, text)
		}
	}

	for _, path := range []string{"main/binary-amd64/Packages", "main/binary-amd64/Packages.gz", "main/binary-amd64/Packages.xz"} {
		// Match the path with its line ending: the plain Packages path is a
		// prefix of the .gz and .xz paths.
		if got := strings.Count(text, " "+path+"\n"); got != 3 {
			t.Errorf("expected %q listed once per hash section (3 total), got %d", path, got)
		}
	}
}

func TestBuildReleaseHashesMatchIndexBytes(t *testing.T) {
	a := mustPackage(t, "Package: a\nVersion: 1\nArchitecture: amd64\nMaintainer: m\nDescription: d\n")
	b := mustPackage(t, "Package: b\nVersion: 1\nArchitecture: arm64\nMaintainer: m\nDescription: d\n")
	files, err := BuildIndexes([]*Package{a, b})
	if err != nil {
		t.Fatalf("BuildIndexes: %v", err)
	}

	release, err := BuildRelease(ReleaseMetadata{}, files, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildRelease: %v", err)
	}
	text := string(release)

	for _, f := range files {
		n, sums, err := HashStream(bytes.NewReader(f.Data))
		if err != nil {
			t.Fatalf("HashStream: %v", err)
		}
		for _, line := range []string{
			fmt.Sprintf(" %x %d %s\n", sums.MD5, n, f.Path),
			fmt.Sprintf(" %x %d %s\n", sums.SHA1, n, f.Path),
			fmt.Sprintf(" %x %d %s\n", sums.SHA256, n, f.Path),
		} {
			if !strings.Contains(text, line) {
				t.Errorf("release text missing %q", line)
			}
		}
	}
}

func TestBuildReleaseSectionsListSamePathsInSameOrder(t *testing.T) {
	a := mustPackage(t, "Package: a\nVersion: 1\nArchitecture: amd64\nMaintainer: m\nDescription: d\n")
	b := mustPackage(t, "Package: b\nVersion: 1\nArchitecture: arm64\nMaintainer: m\nDescription: d\n")
	files, err := BuildIndexes([]*Package{a, b})
	if err != nil {
		t.Fatalf("BuildIndexes: %v", err)
	}
	release, err := BuildRelease(ReleaseMetadata{}, files, time.Now())
	if err != nil {
		t.Fatalf("BuildRelease: %v", err)
	}

	sections := releaseSectionPaths(t, string(release))
	if len(sections) != 3 {
		t.Fatalf("expected 3 hash sections, got %d", len(sections))
	}
	for i := 1; i < 3; i++ {
		if strings.Join(sections[i], ",") != strings.Join(sections[0], ",") {
			t.Errorf("section %d lists %v, section 0 lists %v", i, sections[i], sections[0])
		}
	}
	for i, f := range files {
		if sections[0][i] != f.Path {
			t.Errorf("section path[%d] = %q, want production order %q", i, sections[0][i], f.Path)
		}
	}
}

// releaseSectionPaths extracts the path column of each hash section, in
// order of appearance.
func releaseSectionPaths(t *testing.T, text string) [][]string {
	t.Helper()
	var sections [][]string
	var current []string
	inSection := false
	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case line == "MD5Sum:\n" || line == "SHA1:\n" || line == "SHA256:\n":
			if inSection {
				sections = append(sections, current)
				current = nil
			}
			inSection = true
		case inSection && strings.HasPrefix(line, " "):
			parts := strings.Fields(line)
			if len(parts) != 3 {
				t.Fatalf("malformed hash line %q", line)
			}
			current = append(current, parts[2])
		case inSection && line != "":
			sections = append(sections, current)
			current = nil
			inSection = false
		}
	}
	if inSection {
		sections = append(sections, current)
	}
	return sections
}

func TestBuildReleaseRejectsNonIndexPath(t *testing.T) {
	_, err := BuildRelease(ReleaseMetadata{}, []FileToUpload{{Path: "Release", Data: nil}}, time.Now())
	if err == nil {
		t.Fatal("expected error for non per-architecture path")
	}
}
