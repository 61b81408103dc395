package git

import (
	"strings"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
)

// StageName derives the checkout directory name from a repository URL: the
// last path segment without its extension.
//
//	https://github.com/org/widget.git -> widget
//	git@github.com:org/widget.git     -> widget
//	host:widget                       -> widget
func StageName(url string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(url), "/")

	seg := s
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		seg = s[i+1:]
	} else if i := strings.LastIndex(s, ":"); i >= 0 {
		// scp-like form without a directory
		seg = s[i+1:]
	}

	stem := seg
	if i := strings.LastIndex(seg, "."); i > 0 {
		stem = seg[:i]
	}
	if stem == "" || stem == "." || stem == ".." {
		return "", cerrors.NameResolutionFailed(url)
	}
	return stem, nil
}
