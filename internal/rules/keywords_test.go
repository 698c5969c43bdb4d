package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeywords_EmptyPathUsesDefaults(t *testing.T) {
	kw, err := LoadKeywords("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKeywords(), kw)
}

func TestLoadKeywords_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exact:\n  - banner\n"), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"banner"}, kw.Exact)
	assert.Equal(t, DefaultKeywords().Prefixes, kw.Prefixes, "unset lists keep defaults")
}

func TestLoadKeywords_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exact: {not a list"), 0o644))
	_, err := LoadKeywords(path)
	assert.Error(t, err)
}

func TestLoadKeywords_MissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
