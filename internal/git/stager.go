package git

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/56quarters/cadence-crater/internal/config"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/logfields"
	"github.com/56quarters/cadence-crater/internal/metrics"
)

// Remote identifies a repository to stage and how to clone it.
type Remote struct {
	URL    string
	Branch string
	Depth  int
	Auth   *config.AuthConfig
}

// RemoteFor builds a Remote from a configured project.
func RemoteFor(p config.Project) Remote {
	return Remote{URL: p.Repo, Branch: p.Branch, Depth: p.Depth, Auth: p.Auth}
}

// Stager produces local checkouts of remote repositories.
type Stager struct {
	progress io.Writer
	recorder metrics.Recorder
}

// Option configures a Stager.
type Option func(*Stager)

// WithProgress sends clone progress output to w.
func WithProgress(w io.Writer) Option {
	return func(s *Stager) { s.progress = w }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Stager) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewStager returns a Stager. Clone progress is discarded unless WithProgress is given.
func NewStager(opts ...Option) *Stager {
	s := &Stager{recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Download ensures a checkout of remote exists under into and returns its
// path. An existing repository at that path is reused without fetching; any
// other non-empty directory there is a VCS error and is left untouched.
func (s *Stager) Download(ctx context.Context, remote Remote, into string) (string, error) {
	start := time.Now()
	path, err := s.download(ctx, remote, into)
	s.recorder.ObserveStageDuration(metrics.StageFetch, time.Since(start))
	s.recorder.IncStageResult(metrics.StageFetch, metrics.ResultFor(err))
	return path, err
}

func (s *Stager) download(ctx context.Context, remote Remote, into string) (string, error) {
	name, err := StageName(remote.URL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(into, name)

	opts := &git.CloneOptions{URL: remote.URL, Progress: s.progress, Depth: remote.Depth}
	if remote.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(remote.Branch)
		opts.SingleBranch = true
	}
	auth, err := authMethod(remote.Auth)
	if err != nil {
		s.recorder.IncCheckout(metrics.CheckoutFailed)
		return "", cerrors.WrapError(err, cerrors.CategoryConfig, "failed to setup authentication").
			WithURL(remote.URL).Fatal().Build()
	}
	opts.Auth = auth

	existing, err := openExisting(dest)
	if err != nil {
		s.recorder.IncCheckout(metrics.CheckoutFailed)
		return "", cerrors.VCSFailed(remote.URL, dest, err)
	}
	if existing != nil {
		s.recorder.IncCheckout(metrics.CheckoutReused)
		logCheckout("Reusing existing checkout", existing, remote.URL, dest)
		return dest, nil
	}

	slog.Debug("Cloning repository", logfields.URL(remote.URL), slog.String("branch", remote.Branch), logfields.Path(dest))
	repo, err := git.PlainCloneContext(ctx, dest, false, opts)
	switch {
	case err == nil:
		s.recorder.IncCheckout(metrics.CheckoutCloned)
		logCheckout("Repository cloned", repo, remote.URL, dest)
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		// created by someone else between the check and the clone
		repo, err = git.PlainOpen(dest)
		if err != nil {
			s.recorder.IncCheckout(metrics.CheckoutFailed)
			return "", cerrors.VCSFailed(remote.URL, dest, err)
		}
		s.recorder.IncCheckout(metrics.CheckoutReused)
		logCheckout("Reusing existing checkout", repo, remote.URL, dest)
	default:
		s.recorder.IncCheckout(metrics.CheckoutFailed)
		return "", cerrors.VCSFailed(remote.URL, dest, classifyCloneError(remote.URL, err))
	}
	return dest, nil
}

// openExisting returns the repository already at dest, or nil when dest is
// missing or an empty directory. Anything else at dest must open as a
// repository; go-git would otherwise init over it and clone on top.
func openExisting(dest string) (*git.Repository, error) {
	entries, err := os.ReadDir(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	case len(entries) == 0:
		return nil, nil
	}
	return git.PlainOpen(dest)
}

func logCheckout(msg string, repo *git.Repository, url, dest string) {
	if ref, err := repo.Head(); err == nil {
		slog.Info(msg, logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]), logfields.Checkout(dest))
		return
	}
	slog.Info(msg, logfields.URL(url), logfields.Checkout(dest))
}
