package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupCLIEnv isolates a test from the user's home, config files, and
// ASTRO_ variables. The store defaults to memory and retries are instant.
func setupCLIEnv(t *testing.T) string {
	t.Helper()

	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(key, "ASTRO_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ASTRO_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Setenv("ASTRO_STORAGE_DRIVER", "memory")
	t.Setenv("ASTRO_AGENTS_RETRY_BACKOFF", "1ms")
	t.Setenv("ASTRO_PUBLISH_DELAY", "0s")
	t.Chdir(t.TempDir())
	return home
}

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	CloseLogFile()
	return buf.String(), err
}
