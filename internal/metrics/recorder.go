package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Stage names.
const (
	StageResolve = "resolve"
	StageFetch   = "stage"
	StagePatch   = "patch"
)

// Manifest kinds passed to IncManifestWrite.
const (
	ManifestRoot  = "root"
	ManifestChild = "child"
)

// Checkout outcomes passed to IncCheckout.
const (
	CheckoutCloned = "cloned"
	CheckoutReused = "reused"
	CheckoutFailed = "failed"
)

// ResultFor maps an error to a ResultLabel.
func ResultFor(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

// Recorder defines observability hooks for a crater run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncManifestWrite(kind string, success bool)
	IncCheckout(outcome string)
	IncProjectOutcome(result ResultLabel)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncManifestWrite(string, bool)              {}
func (NoopRecorder) IncCheckout(string)                         {}
func (NoopRecorder) IncProjectOutcome(ResultLabel)              {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
