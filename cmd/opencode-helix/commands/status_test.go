package commands

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wk-j/opencode-helix/internal/discovery"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/process"
)

// fakeProcesses makes discovery see one opencode process per server.
func fakeProcesses(t *testing.T, servers ...*fakeServer) {
	t.Helper()
	orig := lister
	t.Cleanup(func() { lister = orig })

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	lister = process.ListerFunc(func(context.Context) ([]process.Process, error) {
		procs := []process.Process{{PID: 1, CommandLine: "/sbin/init", StartTime: start}}
		for i, s := range servers {
			procs = append(procs, process.Process{
				PID:         100 + i,
				CommandLine: "opencode --port " + s.portArg(),
				StartTime:   start.Add(time.Duration(i) * time.Minute),
			})
		}
		return procs, nil
	})
}

func TestStatus_JSON(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	out, _, err := execute(t, "--port", srv.portArg(), "--cwd", dir, "status", "-o", "json")
	require.NoError(t, err)

	var got statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, srv.port, got.Port)
	assert.Equal(t, dir, got.WorkingDirectory)
	assert.Equal(t, dir, got.Cwd)
	assert.Contains(t, got.Endpoint, "127.0.0.1:"+srv.portArg())
	assert.Zero(t, got.PID)
}

func TestStatus_DiscoversByDirectory(t *testing.T) {
	project := t.TempDir()
	other := newFakeServer(t, t.TempDir())
	mine := newFakeServer(t, project)
	fakeProcesses(t, other, mine)

	out, _, err := execute(t, "--cwd", project, "status", "-o", "yaml")
	require.NoError(t, err)

	var got statusReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, mine.port, got.Port)
	assert.Equal(t, 101, got.PID)
}

func TestStatus_Text(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	out, _, err := execute(t, "--port", srv.portArg(), "--cwd", dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "endpoint:")
	assert.Contains(t, out, dir)
}

func TestStatus_InvalidOutput(t *testing.T) {
	_, _, err := execute(t, "status", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format: xml")
}

func TestStatus_NoServer(t *testing.T) {
	fakeProcesses(t)

	_, _, err := execute(t, "--cwd", t.TempDir(), "status")
	require.Error(t, err)
	assert.True(t, errors.Is(err, discovery.ErrNoServerFound))

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, errors.ExitUser, exitErr.Code)
}
