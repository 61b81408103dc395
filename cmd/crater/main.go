// Command crater stages downstream consumers of a crate and patches them to
// build against a local checkout, for backwards compatibility testing.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/56quarters/cadence-crater/cmd/crater/commands"
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("crater"),
		kong.Description("Run downstream projects against a local checkout of a crate."),
		kong.UsageOnError(),
		commands.Vars(),
	)

	err := parser.Run(&commands.Global{Out: os.Stdout}, cli)
	if err != nil {
		cerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
