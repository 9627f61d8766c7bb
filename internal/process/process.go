// Package process enumerates operating system processes and recognizes
// assistant server invocations among them.
package process

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// startLayout is the ps lstart format once consecutive blanks are collapsed.
const startLayout = "Mon Jan 2 15:04:05 2006"

// Process is one entry of the process table.
type Process struct {
	PID         int
	CommandLine string
	StartTime   time.Time
}

// Lister enumerates running processes.
type Lister interface {
	List(ctx context.Context) ([]Process, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context) ([]Process, error)

// List calls f.
func (f ListerFunc) List(ctx context.Context) ([]Process, error) {
	return f(ctx)
}

// PSLister lists processes with ps(1). Run replaces the ps invocation in tests.
type PSLister struct {
	Run func(ctx context.Context) ([]byte, error)
}

// List returns every process that ps reports, excluding the calling process.
func (l PSLister) List(ctx context.Context) ([]Process, error) {
	run := l.Run
	if run == nil {
		run = runPS
	}

	out, err := run(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing processes")
	}

	self := os.Getpid()
	procs := Parse(out, time.Local)
	filtered := procs[:0]
	for _, p := range procs {
		if p.PID != self {
			filtered = append(filtered, p)
		}
	}

	slog.Debug("listed processes", "count", len(filtered))
	return filtered, nil
}

func runPS(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ps", "-eo", "pid=,lstart=,args=")
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	return cmd.Output()
}

// Parse reads "pid lstart args" lines as printed by ps -eo pid=,lstart=,args=.
// Lines that do not parse are skipped. Start times are interpreted in loc.
func Parse(out []byte, loc *time.Location) []Process {
	var procs []Process

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		f := strings.Fields(scanner.Text())
		if len(f) < 7 {
			continue
		}

		pid, err := strconv.Atoi(f[0])
		if err != nil || pid <= 0 {
			continue
		}

		started, err := time.ParseInLocation(startLayout, strings.Join(f[1:6], " "), loc)
		if err != nil {
			continue
		}

		procs = append(procs, Process{
			PID:         pid,
			CommandLine: strings.Join(f[6:], " "),
			StartTime:   started,
		})
	}

	return procs
}

// IsServer reports whether cmdline runs command (for example "opencode")
// with an explicit listening port. Any argument whose base name starts with
// command counts, so wrappers such as "node opencode.js" or platform
// binaries like "opencode-linux-x64" match. The bridge itself is excluded.
func IsServer(cmdline, command string) bool {
	if _, ok := Port(cmdline); !ok {
		return false
	}

	for _, arg := range strings.Fields(cmdline) {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		base := filepath.Base(arg)
		if strings.HasPrefix(base, "opencode-helix") {
			return false
		}
		if strings.HasPrefix(base, command) {
			return true
		}
	}
	return false
}

// Port extracts the value of a --port flag, in either "--port N" or
// "--port=N" form.
func Port(cmdline string) (int, bool) {
	args := strings.Fields(cmdline)
	for i, arg := range args {
		var value string
		switch {
		case arg == "--port" && i+1 < len(args):
			value = args[i+1]
		case strings.HasPrefix(arg, "--port="):
			value = strings.TrimPrefix(arg, "--port=")
		default:
			continue
		}

		port, err := strconv.Atoi(value)
		if err == nil && port > 0 && port <= 65535 {
			return port, true
		}
	}
	return 0, false
}
