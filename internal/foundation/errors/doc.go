// Package errors provides the classified error type used across crater.
//
// Every failure surfaced by the manifest, crate, patch and git packages is a
// ClassifiedError carrying one category from the error taxonomy below, a
// severity, a human readable message, the underlying cause and structured
// context (path, url, operation).
//
// Categories:
//   - CategoryRead: a manifest could not be opened or read
//   - CategoryParse: a manifest is not valid TOML
//   - CategoryMissingField: a required key or table is absent
//   - CategoryMissingDependencySection: no [dependencies] table to override
//   - CategorySerialize: an in-memory document could not be encoded
//   - CategoryWrite: temp file write, sync or rename failed
//   - CategoryVCS: cloning or opening a repository failed
//   - CategoryNameResolution / CategoryPathResolution: a name or path could
//     not be derived
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRead, "unable to read manifest").
//		WithContext("path", manifestPath).
//		Build()
package errors
