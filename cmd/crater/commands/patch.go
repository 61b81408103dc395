package commands

import (
	"io"

	"github.com/56quarters/cadence-crater/internal/crate"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/patch"
)

// PatchCmd implements the 'patch' command.
type PatchCmd struct {
	Cadence   string   `help:"Cargo.toml of the local crate checkout" default:"Cargo.toml" type:"path"`
	Crate     string   `help:"Dependency to redirect" default:"${default_crate}"`
	Stdout    bool     `help:"Print patched manifests instead of writing them"`
	Manifests []string `arg:"" help:"Root Cargo.toml followed by the Cargo.toml of each workspace member"`
}

func (p *PatchCmd) Run(g *Global) error {
	return p.patch(g.out())
}

func (p *PatchCmd) patch(out io.Writer) error {
	if len(p.Manifests) == 0 {
		return cerrors.ValidationError("at least the root manifest is required").Build()
	}
	info, err := crate.NewResolver(p.Cadence).Resolve()
	if err != nil {
		return err
	}

	opts := []patch.Option{patch.WithCrate(p.Crate)}
	if p.Stdout {
		opts = append(opts, patch.WithWriter(patch.NewPrintWriter(out)))
	}
	return patch.New(p.Manifests[0], p.Manifests[1:], opts...).Patch(info.Version, info.Path)
}
