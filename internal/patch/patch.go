// Package patch rewrites consumer manifests to build against a local crate.
//
// The workspace root always gets the [patch.crates-io] source override. The
// version requirement goes to the root for single-crate projects, or to each
// member crate otherwise. Writes happen one manifest at a time; a failure part
// way through a workspace leaves the manifests already written in place, and
// re-running the patch is safe since both overrides replace rather than
// append.
package patch

import (
	"log/slog"
	"time"

	"github.com/56quarters/cadence-crater/internal/logfields"
	"github.com/56quarters/cadence-crater/internal/manifest"
	"github.com/56quarters/cadence-crater/internal/metrics"
)

// DefaultCrate is the dependency rewritten when no crate name is configured.
const DefaultCrate = "cadence"

// Patcher modifies a root manifest and its member crate manifests.
type Patcher struct {
	root     string
	children []string
	crate    string
	writer   Writer
	recorder metrics.Recorder
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithCrate sets the dependency name to rewrite.
func WithCrate(name string) Option {
	return func(p *Patcher) {
		if name != "" {
			p.crate = name
		}
	}
}

// WithWriter replaces the default atomic file writer.
func WithWriter(w Writer) Option {
	return func(p *Patcher) {
		if w != nil {
			p.writer = w
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Patcher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// New returns a Patcher for the workspace manifest root and the member
// manifests children. Paths are used as given.
func New(root string, children []string, opts ...Option) *Patcher {
	p := &Patcher{
		root:     root,
		children: children,
		crate:    DefaultCrate,
		writer:   manifest.NewAtomicWriter(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Manifests lists every manifest the patcher may write, children first.
func (p *Patcher) Manifests() []string {
	out := make([]string, 0, len(p.children)+1)
	out = append(out, p.children...)
	return append(out, p.root)
}

// Patch rewrites the manifests to require version and resolve the crate
// from localPath.
func (p *Patcher) Patch(version, localPath string) error {
	start := time.Now()
	err := p.patch(version, localPath)
	p.recorder.ObserveStageDuration(metrics.StagePatch, time.Since(start))
	p.recorder.IncStageResult(metrics.StagePatch, metrics.ResultFor(err))
	return err
}

func (p *Patcher) patch(version, localPath string) error {
	root, err := manifest.Load(p.root)
	if err != nil {
		return err
	}
	OverrideSource(root.Root(), p.crate, localPath)

	if len(p.children) == 0 {
		if err := OverrideVersion(root.Root(), p.crate, version, p.root); err != nil {
			return err
		}
		return p.write(p.root, root, metrics.ManifestRoot)
	}

	for _, child := range p.children {
		doc, err := manifest.Load(child)
		if err != nil {
			return err
		}
		if err := OverrideVersion(doc.Root(), p.crate, version, child); err != nil {
			return err
		}
		if err := p.write(child, doc, metrics.ManifestChild); err != nil {
			return err
		}
	}
	return p.write(p.root, root, metrics.ManifestRoot)
}

func (p *Patcher) write(path string, doc *manifest.Document, kind string) error {
	err := p.writer.Write(path, doc)
	p.recorder.IncManifestWrite(kind, err == nil)
	if err != nil {
		return err
	}
	slog.Info("Patched manifest", logfields.Manifest(path), logfields.Crate(p.crate), slog.String("kind", kind))
	return nil
}
