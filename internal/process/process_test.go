package process

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/errors"
)

const psOutput = `    1 Mon Oct  5 08:00:00 2026 /sbin/init
  412 Tue Oct 13 09:15:30 2026 opencode --port 4096
  977 Wed Oct 14 10:01:02 2026 node /usr/lib/node_modules/opencode/bin/opencode.js --port=51234 --hostname 127.0.0.1
garbage line
 1200 Wed Oct 14 10:02:03 2026
 1201 Wed Octember 14 10:02:03 2026 broken date
`

func TestParse(t *testing.T) {
	procs := Parse([]byte(psOutput), time.UTC)
	require.Len(t, procs, 3)

	assert.Equal(t, 1, procs[0].PID)
	assert.Equal(t, "/sbin/init", procs[0].CommandLine)
	assert.Equal(t, time.Date(2026, time.October, 5, 8, 0, 0, 0, time.UTC), procs[0].StartTime)

	assert.Equal(t, 412, procs[1].PID)
	assert.Equal(t, "opencode --port 4096", procs[1].CommandLine)
	assert.Equal(t, time.Date(2026, time.October, 13, 9, 15, 30, 0, time.UTC), procs[1].StartTime)

	assert.Equal(t, 977, procs[2].PID)
	assert.Equal(t, "node /usr/lib/node_modules/opencode/bin/opencode.js --port=51234 --hostname 127.0.0.1", procs[2].CommandLine)
}

func TestPSLister_ExcludesSelf(t *testing.T) {
	self := os.Getpid()
	out := " " + strconv.Itoa(self) + " Wed Oct 14 10:00:00 2026 opencode-helix ask\n" +
		"    7 Wed Oct 14 10:00:00 2026 opencode --port 1\n"

	l := PSLister{Run: func(context.Context) ([]byte, error) { return []byte(out), nil }}
	procs, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, 7, procs[0].PID)
}

func TestPSLister_RunError(t *testing.T) {
	l := PSLister{Run: func(context.Context) ([]byte, error) { return nil, errors.New("ps: not found") }}
	_, err := l.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing processes")
}

func TestPort(t *testing.T) {
	tests := []struct {
		cmdline string
		want    int
		wantOK  bool
	}{
		{"opencode --port 12345", 12345, true},
		{"node opencode.js --port 8080 --other", 8080, true},
		{"opencode --port=9999", 9999, true},
		{"opencode --other", 0, false},
		{"opencode --port", 0, false},
		{"opencode --port abc", 0, false},
		{"opencode --port 0", 0, false},
		{"opencode --port 70000", 0, false},
		{"opencode --portal 80", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cmdline, func(t *testing.T) {
			got, ok := Port(tt.cmdline)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIsServer(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    bool
	}{
		{"plain binary", "opencode --port 4096", true},
		{"absolute path", "/home/u/.opencode/bin/opencode --port 4096", true},
		{"node wrapper", "node /usr/lib/opencode/bin/opencode.js --port=4096", true},
		{"platform binary", "opencode-linux-x64 --port 4096", true},
		{"no port", "opencode", false},
		{"bridge itself", "opencode-helix --port 4096 ask", false},
		{"other program", "python -m http.server --port 4096", false},
		{"name only in flag value", "vim --cmd=opencode --port 4096", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsServer(tt.cmdline, "opencode"))
		})
	}
}

func TestListerFunc(t *testing.T) {
	want := []Process{{PID: 3, CommandLine: "opencode --port 3"}}
	l := ListerFunc(func(context.Context) ([]Process, error) { return want, nil })

	got, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
