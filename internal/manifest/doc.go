// Package manifest loads, edits and writes Cargo.toml documents.
//
// A Document is a tree of Tables whose values are a closed set of kinds:
// strings, tables, arrays and opaque scalars (integers, floats, booleans and
// dates, carried through untouched). Accessors report a kind mismatch with a
// false ok value instead of panicking so callers can turn a missing or
// mistyped key into a classified error.
//
// Documents are written back with an AtomicWriter: the encoded text goes to a
// sibling temporary file that is synced and then renamed over the target, so
// readers only ever see the old or the new manifest.
package manifest
