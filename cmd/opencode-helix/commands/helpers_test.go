package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/config"
	"github.com/wk-j/opencode-helix/internal/paths"
)

// fakeServer is an httptest opencode server recording published events.
type fakeServer struct {
	dir  string
	port int
	srv  *httptest.Server

	mu     sync.Mutex
	events []map[string]any
}

func newFakeServer(t *testing.T, dir string) *fakeServer {
	t.Helper()
	fs := &fakeServer{dir: dir}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /path", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"directory": fs.dir})
	})
	mux.HandleFunc("GET /agent", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"reviewer","mode":"subagent"}]`)
	})
	mux.HandleFunc("GET /command", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"init","template":"/init"}]`)
	})
	mux.HandleFunc("POST /tui/publish", func(w http.ResponseWriter, r *http.Request) {
		var ev map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fs.mu.Lock()
		fs.events = append(fs.events, ev)
		fs.mu.Unlock()
		_, _ = io.WriteString(w, "true")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	fs.srv = srv

	addr, ok := srv.Listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	fs.port = addr.Port
	return fs
}

// close stops the server; later requests are refused.
func (fs *fakeServer) close() {
	fs.srv.Close()
}

func (fs *fakeServer) portArg() string {
	return strconv.Itoa(fs.port)
}

// published returns "type:detail" for every event, detail being the text
// or command.
func (fs *fakeServer) published() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []string
	for _, ev := range fs.events {
		props, _ := ev["properties"].(map[string]any)
		detail, _ := props["text"].(string)
		if cmd, ok := props["command"].(string); ok {
			detail = cmd
		}
		out = append(out, ev["type"].(string)+":"+detail)
	}
	return out
}

// resetFlags restores every flag to its default between executions.
func resetFlags(t *testing.T) {
	t.Helper()

	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue), "flag %s", f.Name)
			f.Changed = false
		})
	}

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset(c.PersistentFlags())
		reset(c.Flags())
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	cfg = config.Default()
}

// execute runs the CLI with args in an isolated config directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	t.Setenv("OPENCODE_SERVER_PASSWORD", "")
	t.Setenv(DebugEnv, "")
	resetFlags(t)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}
