package patch

import (
	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/manifest"
)

// Registry is the registry key under [patch] that Cargo consults for
// crates.io dependencies.
const Registry = "crates-io"

// OverrideSource points patch.crates-io.<crate>.path at localPath. Missing
// intermediate tables are created; sibling entries at every level are kept
// and only the <crate> entry is replaced.
func OverrideSource(root *manifest.Table, crate, localPath string) {
	source := manifest.NewTable()
	source.Set("path", manifest.StringValue(localPath))
	root.EnsureTable("patch").EnsureTable(Registry).Set(crate, manifest.TableValue(source))
}

// OverrideVersion sets dependencies.<crate> to version, replacing whatever
// form the entry had. The [dependencies] table must already exist; path only
// labels the error.
func OverrideVersion(root *manifest.Table, crate, version, path string) error {
	deps, ok := root.GetTable("dependencies")
	if !ok {
		return cerrors.MissingDependencySection(path)
	}
	deps.Set(crate, manifest.StringValue(version))
	return nil
}
