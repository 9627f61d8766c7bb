package opencode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/errors"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:4096", Endpoint(4096))
	assert.Equal(t, "http://127.0.0.1:4096", New(4096).BaseURL())
	assert.Equal(t, "http://host:1", NewWithBaseURL("http://host:1/").BaseURL())
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantDir string
		wantErr error
	}{
		{"directory", http.StatusOK, `{"directory":"/work/proj","worktree":"/work"}`, "/work/proj", nil},
		{"worktree fallback", http.StatusOK, `{"worktree":"/work"}`, "/work", nil},
		{"null directory falls back", http.StatusOK, `{"directory":null,"worktree":"/w"}`, "/w", nil},
		{"neither", http.StatusOK, `{}`, "", ErrBadResponse},
		{"not json", http.StatusOK, `<html>`, "", ErrBadResponse},
		{"server error", http.StatusInternalServerError, `{"directory":"/x"}`, "", ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/path", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			info, err := c.Probe(context.Background())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, info.WorkingDirectory())
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewWithBaseURL(url).Probe(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable), "got %v", err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestProbe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewWithBaseURL(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestProbe_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewWithBaseURL(srv.URL).Probe(ctx)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestBasicAuth(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != BasicAuthUser || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"directory":"/p"}`)
	})

	_, err := c.Probe(context.Background())
	assert.True(t, errors.Is(err, ErrBadResponse))

	WithPassword("hunter2")(c)
	info, err := c.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/p", info.Directory)
}

func TestListAgents(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"name":"build","description":"Default agent","mode":"primary"},
			{"name":"review","description":null,"mode":"subagent","extra":true},
			{"description":"nameless"}
		]`)
	})

	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Agent{
		{Name: "build", Description: "Default agent", Mode: "primary"},
		{Name: "review", Mode: "subagent"},
	}, agents)
	assert.False(t, agents[0].IsSubagent())
	assert.True(t, agents[1].IsSubagent())
}

func TestListAgents_NotArray(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"build"}`)
	})

	_, err := c.ListAgents(context.Background())
	assert.True(t, errors.Is(err, ErrBadResponse))
}

func TestListCommands(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/command", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"name":"init","description":"create AGENTS.md","template":"Please analyze this codebase"},
			{"name":"lint","template":"","agent":"build"}
		]`)
	})

	commands, err := c.ListCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Command{
		{Name: "init", Description: "create AGENTS.md", Template: "Please analyze this codebase"},
		{Name: "lint", Agent: "build"},
	}, commands)
}

// recorder captures published TUI events.
type recorder struct {
	mu     sync.Mutex
	events []event
	status int
}

func (r *recorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/tui/publish", req.URL.Path)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var ev event
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&ev))

		r.mu.Lock()
		r.events = append(r.events, ev)
		status := r.status
		r.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = io.WriteString(w, "true")
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name string
		opts SubmitOptions
		want []event
	}{
		{
			name: "append only",
			opts: SubmitOptions{},
			want: []event{
				{Type: "tui.prompt.append", Properties: map[string]any{"text": "Explain @a.go L1"}},
			},
		},
		{
			name: "append and submit",
			opts: SubmitOptions{Execute: true},
			want: []event{
				{Type: "tui.prompt.append", Properties: map[string]any{"text": "Explain @a.go L1"}},
				{Type: "tui.command.execute", Properties: map[string]any{"command": "prompt.submit"}},
			},
		},
		{
			name: "clear, append and submit",
			opts: SubmitOptions{Clear: true, Execute: true},
			want: []event{
				{Type: "tui.command.execute", Properties: map[string]any{"command": "prompt.clear"}},
				{Type: "tui.prompt.append", Properties: map[string]any{"text": "Explain @a.go L1"}},
				{Type: "tui.command.execute", Properties: map[string]any{"command": "prompt.submit"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c := newServer(t, rec.handler(t))

			require.NoError(t, c.Submit(context.Background(), "Explain @a.go L1", tt.opts))
			assert.Equal(t, tt.want, rec.events)
		})
	}
}

func TestSubmit_StopsOnFailure(t *testing.T) {
	rec := &recorder{status: http.StatusBadGateway}
	c := newServer(t, rec.handler(t))

	err := c.Submit(context.Background(), "hi", SubmitOptions{Execute: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadResponse))
	assert.Len(t, rec.events, 1)
}

func TestExecuteCommand(t *testing.T) {
	rec := &recorder{}
	c := newServer(t, rec.handler(t))

	require.NoError(t, c.ExecuteCommand(context.Background(), CommandSessionNew))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "session.new", rec.events[0].Properties["command"])

	assert.Error(t, c.ExecuteCommand(context.Background(), ""))
	assert.Len(t, rec.events, 1)
}
