// Package repogen orchestrates a full repository regeneration: it walks a
// directory of uploaded .deb files, runs each through the deb package's
// parse/validate/hash pipeline (aborting on the first file that fails),
// groups the packages by architecture, and
// renders the signed index tree the deb package knows how to build.
//
// Everything here is driven by caller-supplied io and a Listener callback
// for progress events; nothing in this package talks to a network or holds
// state across calls.
package repogen
