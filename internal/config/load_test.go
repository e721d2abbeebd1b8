package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/errors"
)

// clearAstroEnv blanks every ASTRO_ variable for the duration of the test.
func clearAstroEnv(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(key, "ASTRO_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	clearAstroEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ReadsProjectAndGlobalConfig(t *testing.T) {
	clearAstroEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, constants.AppHome), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, constants.AppHome, constants.GlobalConfigName), []byte(`
agents:
  max_attempts: 5
storage:
  driver: file
`), 0o600))

	project := t.TempDir()
	t.Chdir(project)
	require.NoError(t, os.MkdirAll(constants.AppHome, 0o700))
	require.NoError(t, os.WriteFile(ProjectConfigPath(), []byte(`
storage:
  driver: memory
`), 0o600))

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Agents.MaxAttempts, "global value survives")
	assert.Equal(t, constants.StorageDriverMemory, cfg.Storage.Driver, "project overrides global")
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	clearAstroEnv(t)

	global := writeConfig(t, `
agents:
  max_attempts: 7
  retry_backoff: 2s
oracle:
  provider: approve
`)
	project := writeConfig(t, `
agents:
  max_attempts: 2
publish:
  success_rate: 0.5
  delay: 250ms
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Agents.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Agents.RetryBackoff)
	assert.Equal(t, constants.OracleProviderApprove, cfg.Oracle.Provider)
	assert.InDelta(t, 0.5, cfg.Publish.SuccessRate, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.Publish.Delay)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port, "unset keys keep defaults")
}

func TestLoadFromPaths_MissingFilesUseDefaults(t *testing.T) {
	clearAstroEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(),
		filepath.Join(dir, "missing-project.yaml"),
		filepath.Join(dir, "missing-global.yaml"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Agents.MaxAttempts)
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	clearAstroEnv(t)
	t.Setenv("ASTRO_ORACLE_PROVIDER", "reject")
	t.Setenv("ASTRO_SERVER_PORT", "9090")
	t.Setenv("ASTRO_AGENTS_RETRY_BACKOFF", "10ms")

	project := writeConfig(t, `
oracle:
  provider: approve
`)

	cfg, err := LoadFromPaths(context.Background(), project, "")
	require.NoError(t, err)
	assert.Equal(t, constants.OracleProviderReject, cfg.Oracle.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Millisecond, cfg.Agents.RetryBackoff)
}

func TestLoadFromPaths_InvalidValues(t *testing.T) {
	clearAstroEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "max attempts too high",
			content: "agents:\n  max_attempts: 99\n",
			wantErr: errors.ErrConfigInvalidAgents,
		},
		{
			name:    "unknown oracle",
			content: "oracle:\n  provider: crystal-ball\n",
			wantErr: errors.ErrConfigInvalidOracle,
		},
		{
			name:    "unknown driver",
			content: "storage:\n  driver: redis\n",
			wantErr: errors.ErrConfigInvalidStorage,
		},
		{
			name:    "success rate above one",
			content: "publish:\n  success_rate: 1.5\n",
			wantErr: errors.ErrConfigInvalidPublish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromPaths(context.Background(), writeConfig(t, tt.content), "")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	clearAstroEnv(t)
	_, err := LoadFromPaths(context.Background(), writeConfig(t, "agents: [unclosed"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read project config")
}

func TestLoadWithOverrides(t *testing.T) {
	clearAstroEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadWithOverrides(context.Background(), &Config{
		Storage: StorageConfig{Driver: constants.StorageDriverMemory},
		Server:  ServerConfig{Port: 3000, EnableCORS: true},
		Oracle:  OracleConfig{Provider: constants.OracleProviderApprove},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.True(t, cfg.Server.EnableCORS)
	assert.Equal(t, constants.OracleProviderApprove, cfg.Oracle.Provider)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Agents.MaxAttempts)
}

func TestLoadWithOverrides_RevalidatesOverrides(t *testing.T) {
	clearAstroEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := LoadWithOverrides(context.Background(), &Config{Agents: AgentsConfig{MaxAttempts: 50}})
	require.ErrorIs(t, err, errors.ErrConfigInvalidAgents)
}

func TestApplyOverrides(t *testing.T) {
	require.ErrorIs(t, ApplyOverrides(nil, &Config{}), errors.ErrConfigNil)

	cfg := DefaultConfig()
	require.NoError(t, ApplyOverrides(cfg, nil))

	require.NoError(t, ApplyOverrides(cfg, &Config{
		Storage: StorageConfig{Driver: constants.StorageDriverMemory},
		Server:  ServerConfig{Port: 9191},
	}))
	assert.Equal(t, constants.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 9191, cfg.Server.Port)
}
