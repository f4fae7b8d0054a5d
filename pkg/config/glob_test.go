package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandGlob(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	b := writeFile(t, dir, "sub/b.json", "{}")
	c := writeFile(t, dir, "sub/deeper/c.yaml", "{}")

	got, err := ExpandGlob(filepath.Join(dir, "**", "*.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	got, err = ExpandGlob(filepath.Join(dir, "**", "*.{json,yaml}"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, c}, got)

	got, err = ExpandGlob(filepath.Join(dir, "*.xml"))
	require.NoError(t, err)
	assert.Empty(t, got)

	plain := filepath.Join(dir, "not-there.json")
	got, err = ExpandGlob(plain)
	require.NoError(t, err)
	assert.Equal(t, []string{plain}, got)
}

func TestExpandGlobs_Dedup(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")

	got, err := ExpandGlobs([]string{a, filepath.Join(dir, "*.json")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/abs/x.json", ResolvePath("/base", "/abs/x.json"))
	assert.Equal(t, filepath.Join("/base", "rel/x.json"), ResolvePath("/base", "rel/x.json"))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("REQDIFF_TEST_A", "1")
	assert.Equal(t, "1-def-", ExpandEnvVars("${REQDIFF_TEST_A}-${REQDIFF_TEST_NOPE:-def}-${REQDIFF_TEST_NOPE}"))
}
