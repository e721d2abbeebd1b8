package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
)

func TestGlobalConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.AppHome), dir)

	path, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.AppHome, constants.GlobalConfigName), path)
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join(constants.AppHome, constants.GlobalConfigName), ProjectConfigPath())
	assert.False(t, filepath.IsAbs(ProjectConfigPath()))
}

func TestStorageConfig_DataPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := StorageConfig{}.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.AppHome, constants.DataDir), path)

	path, err = StorageConfig{Path: "/srv/astro"}.DataPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/astro", path)
}
