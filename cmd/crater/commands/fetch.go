package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/56quarters/cadence-crater/internal/config"
	"github.com/56quarters/cadence-crater/internal/git"
)

// FetchCmd implements the 'fetch' command.
type FetchCmd struct {
	URL    string `arg:"" help:"Repository URL"`
	Path   string `short:"p" help:"Directory to stage into (default: $CRATER_DEST, then the system temp dir)"`
	Branch string `short:"b" help:"Branch to clone"`
	Depth  int    `help:"Shallow clone depth (0 clones full history)"`
}

func (f *FetchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	return f.fetch(ctx, g.out(), progressWriter(root))
}

func (f *FetchCmd) fetch(ctx context.Context, out, progress io.Writer) error {
	dest, err := config.PrepareDestination(config.ResolveDestination(f.Path, nil))
	if err != nil {
		return err
	}
	remote := git.Remote{URL: f.URL, Branch: f.Branch, Depth: f.Depth}
	checkout, err := git.NewStager(git.WithProgress(progress)).Download(ctx, remote, dest)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, checkout)
	return nil
}
