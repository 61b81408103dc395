package commands

import (
	"fmt"

	"github.com/56quarters/cadence-crater/internal/version"
)

// VersionInfoCmd implements the 'version-info' command.
type VersionInfoCmd struct{}

func (v *VersionInfoCmd) Run(g *Global) error {
	_, err := fmt.Fprintln(g.out(), version.String())
	return err
}
