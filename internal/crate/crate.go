// Package crate resolves the version and location of a local crate checkout.
package crate

import (
	"errors"
	"path/filepath"
	"unicode/utf8"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/manifest"
)

// Info describes a local crate.
type Info struct {
	Version string
	Path    string
}

// Resolver determines version and path from a crate's Cargo.toml.
type Resolver struct {
	manifestPath string
}

// NewResolver returns a Resolver for the manifest at manifestPath. The path
// is not checked until Version or Path is called.
func NewResolver(manifestPath string) *Resolver {
	return &Resolver{manifestPath: manifestPath}
}

// ManifestPath returns the manifest path as given.
func (r *Resolver) ManifestPath() string { return r.manifestPath }

// Version returns package.version verbatim. It fails if the manifest cannot
// be read or parsed, or if package is not a table with a string version.
func (r *Resolver) Version() (string, error) {
	doc, err := manifest.Load(r.manifestPath)
	if err != nil {
		return "", err
	}
	pkg, ok := doc.Root().GetTable("package")
	if !ok {
		return "", cerrors.MissingField(r.manifestPath, "package.version")
	}
	version, ok := pkg.GetString("version")
	if !ok {
		return "", cerrors.MissingField(r.manifestPath, "package.version")
	}
	return version, nil
}

// Path returns the absolute, symlink-free directory holding the manifest.
func (r *Resolver) Path() (string, error) {
	if r.manifestPath == "" {
		return "", cerrors.PathResolutionFailed(r.manifestPath, errors.New("empty manifest path"))
	}
	abs, err := filepath.Abs(filepath.Dir(r.manifestPath))
	if err != nil {
		return "", cerrors.PathResolutionFailed(r.manifestPath, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", cerrors.PathResolutionFailed(r.manifestPath, err)
	}
	if !utf8.ValidString(resolved) {
		return "", cerrors.PathResolutionFailed(r.manifestPath, errors.New("path is not valid UTF-8"))
	}
	return resolved, nil
}

// Resolve returns both version and path.
func (r *Resolver) Resolve() (Info, error) {
	version, err := r.Version()
	if err != nil {
		return Info{}, err
	}
	path, err := r.Path()
	if err != nil {
		return Info{}, err
	}
	return Info{Version: version, Path: path}, nil
}
