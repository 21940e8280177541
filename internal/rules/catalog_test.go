package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalog(t *testing.T) {
	dir := writeZoneDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "US"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join("..", "America", "New_York"), filepath.Join(dir, "US", "Eastern")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posixrules"), eastern2024(), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "right", "America"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "right", "America", "New_York"), eastern2024(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not a zone"), 0o644))

	c, err := BuildCatalog([]string{filepath.Join(dir, "missing"), dir}, 2024)
	require.NoError(t, err)

	assert.Equal(t, []string{"America/New_York"}, c.Names())

	zi, ok := c.Lookup("America/New_York")
	require.True(t, ok)
	assert.Equal(t, []string{"US/Eastern"}, zi.Aliases)
	assert.True(t, zi.HasDST())
	assert.Equal(t, []LocalOffset{{"EST", -18000}, {"EDT", -14400}}, zi.Offsets)
	assert.Equal(t, "EST5EDT,M3.2.0,M11.1.0", zi.Extend)

	_, ok = c.Lookup("US/Eastern")
	assert.False(t, ok)

	raw, ok := c.Location("America/New_York")
	require.True(t, ok)
	assert.Len(t, raw.Transitions(), 2)
	assert.Equal(t, "EST5EDT,M3.2.0,M11.1.0", raw.Extend())
	_, ok = c.Location("US/Eastern")
	assert.False(t, ok)
}

func TestBuildCatalogNoDirectory(t *testing.T) {
	_, err := BuildCatalog([]string{filepath.Join(t.TempDir(), "nope")}, 2024)
	assert.Error(t, err)
}
