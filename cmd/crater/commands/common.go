package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/56quarters/cadence-crater/internal/config"
	"github.com/56quarters/cadence-crater/internal/logfields"
	"github.com/56quarters/cadence-crater/internal/version"
)

// Global is passed to every command's Run method.
type Global struct {
	// Out receives command output meant for the user (reports, dry runs).
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run         RunCmd         `cmd:"" help:"Stage every configured project and patch it to build against the local crate"`
	Fetch       FetchCmd       `cmd:"" help:"Stage a single repository"`
	Patch       PatchCmd       `cmd:"" help:"Patch manifests in place to build against the local crate"`
	Init        InitCmd        `cmd:"" help:"Write an example configuration file"`
	VersionInfo VersionInfoCmd `cmd:"" name:"version-info" help:"Show build information"`
}

// Vars are the interpolation variables referenced by CLI tags.
func Vars() kong.Vars {
	return kong.Vars{
		"version":       version.String(),
		"default_crate": config.DefaultCrate,
	}
}

// AfterApply runs after flag parsing; load .env files and set up logging once.
func (c *CLI) AfterApply() error {
	loaded, envErr := config.LoadEnvFiles()

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	} else if envLevel, ok := config.LogLevelFromEnv(); ok {
		level = envLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	for _, name := range loaded {
		slog.Debug("Loaded environment file", logfields.Path(name))
	}
	return envErr
}

// progressWriter is where clone progress goes: stderr when verbose, nowhere otherwise.
func progressWriter(root *CLI) io.Writer {
	if root != nil && root.Verbose {
		return os.Stderr
	}
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}
