package groups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempManager(t *testing.T) *Manager {
	t.Helper()
	m, err := LoadPath(filepath.Join(t.TempDir(), ".scout", "settings.yaml"))
	require.NoError(t, err)
	return m
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	m := tempManager(t)
	assert.Empty(t, m.List())
	assert.Nil(t, m.Get("anything"))
}

func TestSetGetDelete(t *testing.T) {
	m := tempManager(t)

	require.NoError(t, m.Set("backend", []string{"/repos/api", "/repos/workers"}))
	assert.Equal(t, []string{"/repos/api", "/repos/workers"}, m.Get("backend"))

	require.NoError(t, m.Delete("backend"))
	assert.Nil(t, m.Get("backend"))

	// Deleting a nonexistent group is fine.
	require.NoError(t, m.Delete("backend"))
}

func TestSetDedupesAndRejectsEmptyName(t *testing.T) {
	m := tempManager(t)

	require.NoError(t, m.Set("g", []string{"/a", "/a", "", "/b"}))
	assert.Equal(t, []string{"/a", "/b"}, m.Get("g"))

	assert.Error(t, m.Set("", []string{"/a"}))
}

func TestAddRemoveRepo(t *testing.T) {
	m := tempManager(t)

	require.NoError(t, m.AddRepo("frontend", "/repos/web"))
	require.NoError(t, m.AddRepo("frontend", "/repos/mobile"))
	require.NoError(t, m.AddRepo("frontend", "/repos/web")) // already present
	assert.Equal(t, []string{"/repos/web", "/repos/mobile"}, m.Get("frontend"))

	require.NoError(t, m.RemoveRepo("frontend", "/repos/web"))
	assert.Equal(t, []string{"/repos/mobile"}, m.Get("frontend"))

	// Removing from a missing group reports the group.
	err := m.RemoveRepo("nope", "/repos/web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestList(t *testing.T) {
	m := tempManager(t)
	require.NoError(t, m.Set("zebra", []string{"/z"}))
	require.NoError(t, m.Set("alpha", []string{"/a"}))
	assert.Equal(t, []string{"alpha", "zebra"}, m.List())
}

func TestGroupForRepo(t *testing.T) {
	m := tempManager(t)
	require.NoError(t, m.Set("backend", []string{"/repos/api"}))
	require.NoError(t, m.Set("frontend", []string{"/repos/web"}))

	assert.Equal(t, "backend", m.GroupForRepo("/repos/api"))
	assert.Equal(t, "frontend", m.GroupForRepo("/repos/web"))
	assert.Equal(t, "", m.GroupForRepo("/repos/unknown"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".scout", "settings.yaml")

	m1, err := LoadPath(path)
	require.NoError(t, err)
	require.NoError(t, m1.Set("backend", []string{"/repos/api"}))
	require.NoError(t, m1.AddRepo("backend", "/repos/workers"))

	m2, err := LoadPath(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/repos/api", "/repos/workers"}, m2.Get("backend"))
}

func TestLoadPrefersProjectLocalFile(t *testing.T) {
	root := t.TempDir()
	local := filepath.Join(root, ".scout", "settings.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0o755))
	require.NoError(t, os.WriteFile(local, []byte("groups:\n  local:\n    - /repos/here\n"), 0o644))

	m, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, local, m.Path())
	assert.Equal(t, []string{"/repos/here"}, m.Get("local"))
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: [not a map"), 0o644))

	_, err := LoadPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing settings file")
}

func TestModificationWithoutGroupsKeyInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("# empty settings\n"), 0o644))

	m, err := LoadPath(path)
	require.NoError(t, err)
	require.NoError(t, m.AddRepo("g", "/r"))
	assert.Equal(t, []string{"/r"}, m.Get("g"))
}
