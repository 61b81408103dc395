package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/56quarters/cadence-crater/internal/config"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/metrics"
)

func addFileAndCommit(repo *git.Repository, repoPath, filename, content, msg string) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.Hash{}, err
	}
	full := filepath.Join(repoPath, filename)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return plumbing.Hash{}, err
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		return plumbing.Hash{}, err
	}
	if _, err := wt.Add(filename); err != nil {
		return plumbing.Hash{}, err
	}
	return wt.Commit(msg, &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
}

// newRemote creates a bare repository named name.git under dir holding one
// commit with a Cargo.toml, and returns its path.
func newRemote(t *testing.T, dir, name string) string {
	t.Helper()
	barePath := filepath.Join(dir, name+".git")
	_, err := git.PlainInit(barePath, true)
	require.NoError(t, err)

	seedPath := filepath.Join(dir, name+"-seed")
	seed, err := git.PlainInit(seedPath, false)
	require.NoError(t, err)
	_, err = seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)
	_, err = addFileAndCommit(seed, seedPath, "Cargo.toml", "[package]\nname = \""+name+"\"\n", "init")
	require.NoError(t, err)
	require.NoError(t, seed.Push(&git.PushOptions{RemoteName: "origin"}))
	return barePath
}

type checkoutRecorder struct {
	metrics.NoopRecorder
	checkouts []string
	results   []metrics.ResultLabel
}

func (r *checkoutRecorder) IncCheckout(outcome string) { r.checkouts = append(r.checkouts, outcome) }
func (r *checkoutRecorder) IncStageResult(_ string, res metrics.ResultLabel) {
	r.results = append(r.results, res)
}

func TestDownloadIsIdempotent(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp, "widget")
	dest := filepath.Join(tmp, "stage")
	require.NoError(t, os.MkdirAll(dest, 0o750))

	rec := &checkoutRecorder{}
	s := NewStager(WithRecorder(rec))

	first, err := s.Download(context.Background(), Remote{URL: remote}, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "widget"), first)
	assert.FileExists(t, filepath.Join(first, "Cargo.toml"))

	// Local edits survive re-staging.
	require.NoError(t, os.WriteFile(filepath.Join(first, "Cargo.toml"), []byte("patched = true\n"), 0o600))

	second, err := s.Download(context.Background(), Remote{URL: remote}, dest)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(filepath.Join(second, "Cargo.toml"))
	require.NoError(t, err)
	assert.Equal(t, "patched = true\n", string(data))

	assert.Equal(t, []string{metrics.CheckoutCloned, metrics.CheckoutReused}, rec.checkouts)
	assert.Equal(t, []metrics.ResultLabel{metrics.ResultSuccess, metrics.ResultSuccess}, rec.results)
}

func TestDownloadBranch(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp, "widget")

	path, err := NewStager().Download(context.Background(), Remote{URL: remote, Branch: "master"}, filepath.Join(tmp, "ok"))
	require.NoError(t, err)

	repo, err := git.PlainOpen(path)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("master"), head.Name())

	_, err = NewStager().Download(context.Background(), Remote{URL: remote, Branch: "no-such-branch"}, filepath.Join(tmp, "bad"))
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryVCS))
}

func TestDownloadMissingRemote(t *testing.T) {
	tmp := t.TempDir()
	rec := &checkoutRecorder{}
	missing := filepath.Join(tmp, "nowhere", "ghost.git")

	_, err := NewStager(WithRecorder(rec)).Download(context.Background(), Remote{URL: missing}, tmp)
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryVCS))

	ce, ok := cerrors.AsClassified(err)
	require.True(t, ok)
	url, _ := ce.Context().GetString("url")
	assert.Equal(t, missing, url)

	assert.NoDirExists(t, filepath.Join(tmp, "ghost"))
	assert.Equal(t, []string{metrics.CheckoutFailed}, rec.checkouts)
	assert.Equal(t, []metrics.ResultLabel{metrics.ResultFailed}, rec.results)
}

func TestDownloadRefusesNonRepositoryDirectory(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp, "widget")
	dest := filepath.Join(tmp, "stage")
	manifest := filepath.Join(dest, "widget", "Cargo.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(manifest), 0o750))
	require.NoError(t, os.WriteFile(manifest, []byte("junk"), 0o600))

	rec := &checkoutRecorder{}
	_, err := NewStager(WithRecorder(rec)).Download(context.Background(), Remote{URL: remote}, dest)
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryVCS))

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, "junk", string(data))
	assert.NoDirExists(t, filepath.Join(dest, "widget", ".git"))
	assert.Equal(t, []string{metrics.CheckoutFailed}, rec.checkouts)
}

func TestDownloadTargetIsFile(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp, "widget")
	dest := filepath.Join(tmp, "stage")
	require.NoError(t, os.MkdirAll(dest, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "widget"), []byte("file"), 0o600))

	_, err := NewStager().Download(context.Background(), Remote{URL: remote}, dest)
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryVCS))
}

func TestDownloadIntoEmptyDirectory(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp, "widget")
	dest := filepath.Join(tmp, "stage")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "widget"), 0o750))

	rec := &checkoutRecorder{}
	path, err := NewStager(WithRecorder(rec)).Download(context.Background(), Remote{URL: remote}, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "Cargo.toml"))
	assert.Equal(t, []string{metrics.CheckoutCloned}, rec.checkouts)
}

func TestDownloadUnresolvableName(t *testing.T) {
	_, err := NewStager().Download(context.Background(), Remote{URL: "https://"}, t.TempDir())
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryNameResolution))
}

func TestDownloadBadAuth(t *testing.T) {
	remote := Remote{URL: "https://example.com/org/widget.git", Auth: &config.AuthConfig{Type: config.AuthTypeToken}}
	_, err := NewStager().Download(context.Background(), remote, t.TempDir())
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryConfig))
}

func TestRemoteFor(t *testing.T) {
	auth := &config.AuthConfig{Type: config.AuthTypeToken, Token: "x"}
	r := RemoteFor(config.Project{Repo: "u", Branch: "b", Depth: 3, Auth: auth, Root: "."})
	assert.Equal(t, Remote{URL: "u", Branch: "b", Depth: 3, Auth: auth}, r)
}
