package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/errors"
)

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func getTask(t *testing.T, base, id string) *domain.AgentTask {
	t.Helper()
	resp, err := http.Get(base + "/api/tasks/" + id) //nolint:noctx // test helper
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var snapshot domain.AgentTask
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil
	}
	return &snapshot
}

func TestServe_ShutsDownAndDrainsTasks(t *testing.T) {
	setupCLIEnv(t)
	// a rejected task parks in its retry backoff until the server stops
	t.Setenv("ASTRO_AGENTS_RETRY_BACKOFF", "1h")

	port := freePort(t)
	base := "http://127.0.0.1:" + strconv.Itoa(port)

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "--oracle", "reject"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()
	defer CloseLogFile()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/health") //nolint:noctx // test polling
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/tasks", "application/json", //nolint:noctx // test request
		strings.NewReader(`{"title":"Answer the launch thread","max_attempts":3}`))
	require.NoError(t, err)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotEmpty(t, created.ID)

	require.Eventually(t, func() bool {
		snapshot := getTask(t, base, created.ID)
		return snapshot != nil && snapshot.CurrentStep == constants.TaskStepRetry
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down after cancel")
	}

	assert.Contains(t, out.String(), "Listening on http://127.0.0.1:"+strconv.Itoa(port))

	_, err = http.Get(base + "/api/health") //nolint:noctx // server must be gone
	require.Error(t, err)

	CloseLogFile()
	logPath, err := LogFilePath()
	require.NoError(t, err)
	logData, err := os.ReadFile(logPath) //nolint:gosec // test temp dir
	require.NoError(t, err)
	assert.Contains(t, string(logData), "agent task canceled")
	assert.Contains(t, string(logData), "astro console stopped")
}

func TestServe_RejectsInvalidConfig(t *testing.T) {
	setupCLIEnv(t)

	_, err := executeCommand(t, "serve", "--storage", "redis")
	require.ErrorIs(t, err, errors.ErrConfigInvalidStorage)
}
