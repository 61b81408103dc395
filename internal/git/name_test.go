package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
)

func TestStageName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/org/widget.git":  "widget",
		"https://github.com/org/widget":      "widget",
		"https://github.com/org/widget.git/": "widget",
		"git@github.com:org/widget.git":      "widget",
		"host:widget.git":                    "widget",
		"/srv/git/widget.rs.git":             "widget.rs",
		"ssh://git@host/.dotfiles":           ".dotfiles",
		"widget":                             "widget",
	}
	for url, want := range cases {
		got, err := StageName(url)
		require.NoError(t, err, url)
		assert.Equal(t, want, got, url)
	}
}

func TestStageNameUnresolvable(t *testing.T) {
	for _, url := range []string{"", "   ", "https://", "/", "https://host/org/..", "host:"} {
		_, err := StageName(url)
		require.Error(t, err, url)
		assert.True(t, cerrors.HasCategory(err, cerrors.CategoryNameResolution), url)
	}
}
