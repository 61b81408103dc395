package patch

import (
	"fmt"
	"io"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/manifest"
)

// Writer persists a patched manifest.
type Writer interface {
	Write(path string, doc *manifest.Document) error
}

// PrintWriter prints each patched manifest instead of writing it to disk.
type PrintWriter struct {
	out io.Writer
}

// NewPrintWriter returns a Writer that prints to out.
func NewPrintWriter(out io.Writer) *PrintWriter {
	return &PrintWriter{out: out}
}

func (p *PrintWriter) Write(path string, doc *manifest.Document) error {
	contents, err := doc.Encode()
	if err != nil {
		return cerrors.SerializeFailed(path, err)
	}
	if _, err := fmt.Fprintf(p.out, "# %s\n%s\n", path, contents); err != nil {
		return cerrors.WriteFailed(path, "print", err)
	}
	return nil
}
