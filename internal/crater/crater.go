// Package crater prepares downstream projects for backwards compatibility
// testing: it stages each configured project and patches its manifests to
// build against a local checkout of the crate.
//
// Projects are handled one at a time. By default the first failure stops
// the run; with KeepGoing every project is attempted and the failures are
// returned together.
package crater

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/56quarters/cadence-crater/internal/config"
	"github.com/56quarters/cadence-crater/internal/crate"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/git"
	"github.com/56quarters/cadence-crater/internal/logfields"
	"github.com/56quarters/cadence-crater/internal/manifest"
	"github.com/56quarters/cadence-crater/internal/metrics"
	"github.com/56quarters/cadence-crater/internal/patch"
)

// Stager produces a local checkout of a remote under a directory.
type Stager interface {
	Download(ctx context.Context, remote git.Remote, into string) (string, error)
}

// Request describes a single run.
type Request struct {
	Config *config.Config
	// CrateManifest is the Cargo.toml of the local crate checkout.
	CrateManifest string
	// Destination is where projects are staged. It is created if missing.
	Destination string
}

// Result is the outcome for one project.
type Result struct {
	Name      string
	Repo      string
	Checkout  string
	Manifests []string
	Err       error
}

// Report summarizes a run.
type Report struct {
	Crate       crate.Info
	Destination string
	Projects    []Result
	Duration    time.Duration
}

// Failed counts projects that did not complete.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Projects {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Runner stages and patches projects.
type Runner struct {
	stager    Stager
	writer    patch.Writer
	recorder  metrics.Recorder
	keepGoing bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithStager replaces the default go-git stager.
func WithStager(s Stager) Option {
	return func(r *Runner) {
		if s != nil {
			r.stager = s
		}
	}
}

// WithWriter sets the manifest writer passed to each patcher.
func WithWriter(w patch.Writer) Option {
	return func(r *Runner) { r.writer = w }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithKeepGoing continues past failed projects.
func WithKeepGoing(keepGoing bool) Option {
	return func(r *Runner) { r.keepGoing = keepGoing }
}

// NewRunner returns a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.stager == nil {
		r.stager = git.NewStager(git.WithRecorder(r.recorder))
	}
	return r
}

// Run resolves the local crate once, then stages and patches every project
// in order. The report is returned even when err is non-nil.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() {
		report.Duration = time.Since(start)
		r.recorder.ObserveRunDuration(report.Duration)
	}()

	if req.Config == nil {
		return report, cerrors.ConfigError("config required").Build()
	}

	info, err := r.resolve(req.CrateManifest)
	if err != nil {
		return report, err
	}
	report.Crate = info

	dest, err := config.PrepareDestination(req.Destination)
	if err != nil {
		return report, err
	}
	report.Destination = dest

	crateName := req.Config.Crate
	slog.Info("Starting run",
		logfields.Crate(crateName),
		logfields.Version(info.Version),
		logfields.Path(info.Path),
		slog.String("destination", dest),
		logfields.Count(len(req.Config.Projects)))

	var errs []error
	for _, p := range req.Config.Projects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res := r.runProject(ctx, p, crateName, info, dest)
		report.Projects = append(report.Projects, res)
		r.recorder.IncProjectOutcome(metrics.ResultFor(res.Err))
		if res.Err == nil {
			continue
		}

		slog.Error("Project failed",
			logfields.Project(res.Name),
			logfields.URL(p.Repo),
			slog.String("category", string(cerrors.GetCategory(res.Err))),
			logfields.Error(res.Err))
		errs = append(errs, res.Err)
		if !r.keepGoing {
			break
		}
	}

	slog.Info("Run complete",
		logfields.Count(len(report.Projects)),
		slog.Int("failed", report.Failed()),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return report, errors.Join(errs...)
}

func (r *Runner) resolve(manifestPath string) (crate.Info, error) {
	start := time.Now()
	info, err := crate.NewResolver(manifestPath).Resolve()
	r.recorder.ObserveStageDuration(metrics.StageResolve, time.Since(start))
	r.recorder.IncStageResult(metrics.StageResolve, metrics.ResultFor(err))
	return info, err
}

func (r *Runner) runProject(ctx context.Context, p config.Project, crateName string, info crate.Info, dest string) Result {
	res := Result{Name: p.Repo, Repo: p.Repo}
	if name, err := git.StageName(p.Repo); err == nil {
		res.Name = name
	}

	checkout, err := r.stager.Download(ctx, git.RemoteFor(p), dest)
	if err != nil {
		res.Err = err
		return res
	}
	res.Checkout = checkout

	root, children := ManifestPaths(checkout, p)
	patcher := patch.New(root, children,
		patch.WithCrate(crateName),
		patch.WithWriter(r.writer),
		patch.WithRecorder(r.recorder))
	res.Manifests = patcher.Manifests()

	if err := patcher.Patch(info.Version, info.Path); err != nil {
		res.Err = err
		return res
	}
	slog.Info("Project patched", logfields.Project(res.Name), logfields.Checkout(checkout), logfields.Count(len(res.Manifests)))
	return res
}

// ManifestPaths returns the root manifest of a project checkout and the
// manifests of its subprojects.
func ManifestPaths(checkout string, p config.Project) (string, []string) {
	rootDir := filepath.Join(checkout, p.Root)
	children := make([]string, 0, len(p.Subprojects))
	for _, sub := range p.Subprojects {
		children = append(children, filepath.Join(rootDir, sub, manifest.FileName))
	}
	return filepath.Join(rootDir, manifest.FileName), children
}
