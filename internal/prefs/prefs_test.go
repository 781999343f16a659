package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/internal/errors"
)

func TestLoad_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.yaml"))
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Prefs{}, p)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.yaml")
	s := NewStore(path)

	require.NoError(t, s.SaveTheme("light"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "theme: light\n", string(data))

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "light", p.Theme)

	require.NoError(t, s.SaveTheme("dark"))
	p, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Theme)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [oops\n"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSaveTheme_OverwritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::::"), 0o644))

	s := NewStore(path)
	require.NoError(t, s.SaveTheme("light"))

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "light", p.Theme)
}

func TestSave_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "state.yaml"))
	require.NoError(t, s.SaveTheme("dark"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.yaml", entries[0].Name())
}
