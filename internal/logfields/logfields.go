package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyProject    = "project"
	KeyCrate      = "crate"
	KeyVersion    = "version"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCheckout   = "checkout"
	KeyManifest   = "manifest"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Project(name string) slog.Attr   { return slog.String(KeyProject, name) }
func Crate(name string) slog.Attr     { return slog.String(KeyCrate, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Checkout(p string) slog.Attr     { return slog.String(KeyCheckout, p) }
func Manifest(p string) slog.Attr     { return slog.String(KeyManifest, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
