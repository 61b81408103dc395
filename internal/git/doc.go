// Package git stages downstream projects as local working copies.
//
// A project is cloned into <destination>/<name>, where name is the file stem
// of the last URL segment. When that directory already holds a repository it
// is reused as is, so staging the same project twice is not an error. Nothing
// is fetched or reset on reuse.
//
// Authentication (SSH key, token, basic) and clone failures are mapped to
// typed errors wrapped in a vcs ClassifiedError.
package git
