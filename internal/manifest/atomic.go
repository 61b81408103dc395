package manifest

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/logfields"
)

const defaultFileMode fs.FileMode = 0o644

// AtomicWriter writes documents through a synced sibling temporary file and a
// single rename. Temporary names embed the target file name and a random
// suffix, so writers in different processes or for different manifests never
// share a temp file. Callers must still avoid two concurrent writes to the
// same manifest: the last rename wins. Temp files left by an interrupted
// write are removed by the next write to the same manifest.
type AtomicWriter struct {
	// beforeRename runs after the temp file is synced and closed. Tests use it
	// to simulate a crash before the rename.
	beforeRename func(tmpPath string) error
}

// NewAtomicWriter returns a writer with default behavior.
func NewAtomicWriter() *AtomicWriter { return &AtomicWriter{} }

// Write encodes doc and atomically replaces path with the result.
func (w *AtomicWriter) Write(path string, doc *Document) error {
	contents, err := doc.Encode()
	if err != nil {
		return cerrors.SerializeFailed(path, err)
	}
	return w.writeBytes(path, contents)
}

func (w *AtomicWriter) writeBytes(path string, contents []byte) (err error) {
	mode := defaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	prefix := tempPrefix(path)
	removeStaleTemps(dir, prefix)
	tmpPath := filepath.Join(dir, prefix+uuid.NewString())

	fd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return cerrors.WriteFailed(path, "create temp", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = fd.Write(contents); err != nil {
		_ = fd.Close()
		return cerrors.WriteFailed(path, "write", err)
	}
	if err = fd.Sync(); err != nil {
		_ = fd.Close()
		return cerrors.WriteFailed(path, "sync", err)
	}
	if err = fd.Close(); err != nil {
		return cerrors.WriteFailed(path, "close", err)
	}

	if w.beforeRename != nil {
		if err = w.beforeRename(tmpPath); err != nil {
			return cerrors.WriteFailed(path, "rename", err)
		}
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return cerrors.WriteFailed(path, "rename", err)
	}

	syncDir(dir)
	slog.Debug("Wrote manifest", logfields.Manifest(path), slog.Int("bytes", len(contents)))
	return nil
}

func tempPrefix(path string) string {
	return "." + filepath.Base(path) + ".crater-"
}

// removeStaleTemps deletes temp files for the same target left behind by a
// write that never reached its rename.
func removeStaleTemps(dir, prefix string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		stale := filepath.Join(dir, e.Name())
		if err := os.Remove(stale); err != nil {
			slog.Debug("Unable to remove stale temp file", logfields.Path(stale), logfields.Error(err))
			continue
		}
		slog.Debug("Removed stale temp file", logfields.Path(stale))
	}
}

// syncDir flushes the directory entry for the rename. Not every platform
// supports fsync on directories, so failures are only logged.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer func() { _ = d.Close() }()
	if err := d.Sync(); err != nil {
		slog.Debug("Directory sync unsupported", logfields.Path(dir), logfields.Error(err))
	}
}
