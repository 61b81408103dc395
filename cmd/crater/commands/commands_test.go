package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/56quarters/cadence-crater/internal/config"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/manifest"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("crater"), Vars(), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli, kctx := parse(t, args...)
	var out bytes.Buffer
	err := kctx.Run(&Global{Out: &out}, cli)
	return out.String(), err
}

func writeFile(t *testing.T, path, contents string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func lookupString(t *testing.T, path string, keys ...string) string {
	t.Helper()
	doc, err := manifest.Load(path)
	require.NoError(t, err)
	v, ok := doc.Root().Lookup(keys...)
	require.True(t, ok, "missing %v in %s", keys, path)
	s, ok := v.AsString()
	require.True(t, ok)
	return s
}

func newLocalCrate(t *testing.T) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "cadence", "Cargo.toml"),
		"[package]\nname = \"cadence\"\nversion = \"1.5.0-dev\"\n")
}

func TestParseDefaults(t *testing.T) {
	cli, kctx := parse(t, "run")
	assert.Equal(t, "run", kctx.Command())
	assert.Equal(t, "crater.yaml", filepath.Base(cli.Run.Config))
	assert.Equal(t, "Cargo.toml", filepath.Base(cli.Run.Cadence))
	assert.False(t, cli.Run.KeepGoing)

	cli, kctx = parse(t, "patch", "Cargo.toml", "core/Cargo.toml")
	assert.Equal(t, "patch <manifests>", kctx.Command())
	assert.Equal(t, config.DefaultCrate, cli.Patch.Crate)
	assert.Equal(t, []string{"Cargo.toml", "core/Cargo.toml"}, cli.Patch.Manifests)

	cli, _ = parse(t, "-v", "run", "-k", "--dry-run", "--dest", "/tmp/x")
	assert.True(t, cli.Verbose)
	assert.True(t, cli.Run.KeepGoing)
	assert.True(t, cli.Run.DryRun)
	assert.Equal(t, "/tmp/x", cli.Run.Dest)
}

func TestPatchCommand(t *testing.T) {
	cadence := newLocalCrate(t)
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "Cargo.toml"), "[workspace]\nmembers = [\"core\"]\n")
	child := writeFile(t, filepath.Join(dir, "core", "Cargo.toml"), "[dependencies]\ncadence = \"0.29\"\n")

	out, err := execute(t, "patch", "--cadence", cadence, "--stdout", root, child)
	require.NoError(t, err)
	assert.Contains(t, out, "# "+child)
	assert.Contains(t, out, "# "+root)
	assert.Contains(t, out, "1.5.0-dev")
	assert.Equal(t, "0.29", lookupString(t, child, "dependencies", "cadence"))

	_, err = execute(t, "patch", "--cadence", cadence, root, child)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0-dev", lookupString(t, child, "dependencies", "cadence"))
	crateDir, err := filepath.EvalSymlinks(filepath.Dir(cadence))
	require.NoError(t, err)
	assert.Equal(t, crateDir, lookupString(t, root, "patch", "crates-io", "cadence", "path"))
}

func TestPatchCommandMissingDependencies(t *testing.T) {
	cadence := newLocalCrate(t)
	root := writeFile(t, filepath.Join(t.TempDir(), "Cargo.toml"), "[package]\nname = \"app\"\n")

	_, err := execute(t, "patch", "--cadence", cadence, "--crate", "widget", root)
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryMissingDependencySection))
	assert.Equal(t, 9, cerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crater.toml")
	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "init", path)
	require.Error(t, err)
	assert.True(t, cerrors.HasCategory(err, cerrors.CategoryConfig))

	_, err = execute(t, "init", "--force", path)
	require.NoError(t, err)
}

func TestVersionInfoCommand(t *testing.T) {
	out, err := execute(t, "version-info")
	require.NoError(t, err)
	assert.Contains(t, out, "crater ")
}

func newRemote(t *testing.T, dir string) string {
	t.Helper()
	barePath := filepath.Join(dir, "consumer.git")
	_, err := git.PlainInit(barePath, true)
	require.NoError(t, err)

	seedPath := filepath.Join(dir, "seed")
	seed, err := git.PlainInit(seedPath, false)
	require.NoError(t, err)
	_, err = seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)
	writeFile(t, filepath.Join(seedPath, "Cargo.toml"), "[package]\nname = \"consumer\"\n\n[dependencies]\ncadence = \"0.29\"\n")
	wt, err := seed.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("Cargo.toml")
	require.NoError(t, err)
	_, err = wt.Commit("seed", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)
	require.NoError(t, seed.Push(&git.PushOptions{RemoteName: "origin"}))
	return barePath
}

func TestRunCommand(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp)
	cadence := newLocalCrate(t)
	cfgPath := writeFile(t, filepath.Join(tmp, "crater.yaml"), "projects:\n  - repo: "+remote+"\n")
	dest := filepath.Join(tmp, "stage")
	metricsPath := filepath.Join(tmp, "crater.prom")

	out, err := execute(t, "run", "-c", cfgPath, "--cadence", cadence, "--dest", dest, "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   consumer")
	assert.Contains(t, out, "1 projects, 0 failed")

	assert.Equal(t, "1.5.0-dev", lookupString(t, filepath.Join(dest, "consumer", "Cargo.toml"), "dependencies", "cadence"))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `crater_checkouts_total{outcome="cloned"} 1`)
	assert.Contains(t, string(prom), `crater_project_outcomes_total{result="success"} 1`)
}

func TestRunCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "run", "-c", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Equal(t, 7, cerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestFetchCommand(t *testing.T) {
	tmp := t.TempDir()
	remote := newRemote(t, tmp)
	dest := filepath.Join(tmp, "stage")

	out, err := execute(t, "fetch", "--path", dest, remote)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, "consumer")+"\n", out)

	again, err := execute(t, "fetch", "--path", dest, remote)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
