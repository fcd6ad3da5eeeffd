// Package server exposes the HTTP surface that sits in front of the deb and
// repogen packages: an authenticated upload endpoint that files incoming
// .deb archives into storage, and a regenerate endpoint that invokes the
// generator binary as a subprocess and atomically swaps the resulting
// repository tree into place.
//
// Every mutating request is serialized behind a single exclusive lock; the
// core generation logic never runs concurrently with itself or with an
// in-flight upload being moved into storage.
package server
