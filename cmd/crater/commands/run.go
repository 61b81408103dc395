package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/56quarters/cadence-crater/internal/config"
	"github.com/56quarters/cadence-crater/internal/crater"
	"github.com/56quarters/cadence-crater/internal/git"
	"github.com/56quarters/cadence-crater/internal/logfields"
	"github.com/56quarters/cadence-crater/internal/metrics"
	"github.com/56quarters/cadence-crater/internal/patch"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Config      string `short:"c" help:"Configuration file (YAML, or TOML when it ends in .toml)" default:"crater.yaml" type:"path"`
	Cadence     string `help:"Cargo.toml of the local crate checkout" default:"Cargo.toml" type:"path"`
	Dest        string `short:"d" help:"Directory to stage projects in (default: config destination, $CRATER_DEST, then the system temp dir)"`
	KeepGoing   bool   `name:"keep-going" short:"k" help:"Continue with remaining projects after a failure"`
	DryRun      bool   `name:"dry-run" help:"Print patched manifests instead of writing them"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path after the run"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(r.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return r.run(ctx, cfg, g.out(), progressWriter(root))
}

func (r *RunCmd) run(ctx context.Context, cfg *config.Config, out, progress io.Writer) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prometheus.Registry
	if r.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	opts := []crater.Option{
		crater.WithRecorder(recorder),
		crater.WithKeepGoing(r.KeepGoing),
		crater.WithStager(git.NewStager(git.WithProgress(progress), git.WithRecorder(recorder))),
	}
	if r.DryRun {
		opts = append(opts, crater.WithWriter(patch.NewPrintWriter(out)))
	}

	report, runErr := crater.NewRunner(opts...).Run(ctx, crater.Request{
		Config:        cfg,
		CrateManifest: r.Cadence,
		Destination:   config.ResolveDestination(r.Dest, cfg),
	})
	printReport(out, report)

	if registry != nil {
		if err := metrics.WriteTextfile(r.MetricsFile, registry); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(r.MetricsFile), logfields.Error(err))
		}
	}
	return runErr
}

func printReport(out io.Writer, report *crater.Report) {
	if report == nil || len(report.Projects) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "crate %s at %s\n", report.Crate.Version, report.Crate.Path)
	for _, p := range report.Projects {
		if p.Err != nil {
			_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", p.Name, p.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "ok   %s %s\n", p.Name, p.Checkout)
	}
	_, _ = fmt.Fprintf(out, "%d projects, %d failed\n", len(report.Projects), report.Failed())
}
