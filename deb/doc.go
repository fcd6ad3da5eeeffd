// Package deb implements the offline pipeline for a signed APT-style binary
// package repository: hashing, control-file parsing, archive extraction,
// package validation, index generation, release-manifest rendering, and PGP
// signing.
//
// # Design Philosophy
//
// The package operates entirely in memory against caller-supplied byte
// streams. Nothing here touches a filesystem or a network socket; generating
// a repository from a set of packages is a pure function of its inputs. This
// keeps the core trivially testable and safe to run against untrusted
// uploads in an isolated subprocess.
//
// # Pipeline
//
//   - ExtractControl reads the ar/tar/compression layers of a .deb and
//     recovers the raw control text.
//   - ParseControl turns that text into an ordered field map.
//   - Validate enforces the required/forbidden field rules.
//   - NewPackage combines the validated fields with a HashStream result into
//     an immutable Package.
//   - BuildIndexes and BuildRelease render the Packages/Release text.
//   - SignRelease produces InRelease, Release.gpg, and the public keyring.
package deb
