package commands

import (
	"fmt"

	"github.com/56quarters/cadence-crater/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Path  string `arg:"" optional:"" help:"Configuration file to write (.yaml or .toml)" default:"crater.yaml" type:"path"`
	Force bool   `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global) error {
	if err := config.Init(i.Path, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Wrote example configuration to %s\n", i.Path)
	return nil
}
