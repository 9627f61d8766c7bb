package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wk-j/opencode-helix/internal/errors"
)

const (
	// DefaultTimeout bounds every request when no other timeout is configured.
	DefaultTimeout = 5 * time.Second

	// BasicAuthUser is the user name the server expects with a password.
	BasicAuthUser = "opencode"

	maxBodySize = 1 << 20
)

// Transport failure classes.
var (
	ErrUnreachable = errors.New("server unreachable")
	ErrTimeout     = errors.New("server timed out")
	ErrBadResponse = errors.New("bad server response")
)

// Client talks to one opencode server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	password   string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithPassword enables HTTP basic auth.
func WithPassword(password string) Option {
	return func(c *Client) { c.password = password }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for the server listening on the loopback port.
func New(port int, opts ...Option) *Client {
	return NewWithBaseURL(Endpoint(port), opts...)
}

// NewWithBaseURL returns a client for an arbitrary base URL.
func NewWithBaseURL(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL of a server on the loopback port.
func Endpoint(port int) string {
	return "http://127.0.0.1:" + strconv.Itoa(port)
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PathInfo is the server's answer to GET /path.
type PathInfo struct {
	Directory string `json:"directory,omitempty"`
	Worktree  string `json:"worktree,omitempty"`
}

// WorkingDirectory returns the directory, falling back to the worktree.
func (p PathInfo) WorkingDirectory() string {
	if p.Directory != "" {
		return p.Directory
	}
	return p.Worktree
}

// Agent is an agent configured on the server.
type Agent struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// IsSubagent reports whether the agent can be mentioned with @name.
func (a Agent) IsSubagent() bool {
	return a.Mode == "subagent"
}

// Command is a custom slash command configured on the server.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Template    string `json:"template,omitempty"`
	Agent       string `json:"agent,omitempty"`
}

// Probe reads the server's working directory. A server that answers but
// reports no directory is a bad response.
func (c *Client) Probe(ctx context.Context) (PathInfo, error) {
	body, err := c.get(ctx, "/path")
	if err != nil {
		return PathInfo{}, err
	}
	if !gjson.ValidBytes(body) {
		return PathInfo{}, errors.Mark(errors.New("GET /path: invalid JSON"), ErrBadResponse)
	}

	info := PathInfo{
		Directory: gjson.GetBytes(body, "directory").String(),
		Worktree:  gjson.GetBytes(body, "worktree").String(),
	}
	if info.WorkingDirectory() == "" {
		return PathInfo{}, errors.Mark(errors.New("GET /path: no working directory reported"), ErrBadResponse)
	}
	return info, nil
}

// ListAgents returns the agents configured on the server.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	items, err := c.getArray(ctx, "/agent")
	if err != nil {
		return nil, err
	}

	agents := make([]Agent, 0, len(items))
	for _, item := range items {
		name := item.Get("name").String()
		if name == "" {
			continue
		}
		agents = append(agents, Agent{
			Name:        name,
			Description: item.Get("description").String(),
			Mode:        item.Get("mode").String(),
		})
	}
	return agents, nil
}

// ListCommands returns the custom commands configured on the server.
func (c *Client) ListCommands(ctx context.Context) ([]Command, error) {
	items, err := c.getArray(ctx, "/command")
	if err != nil {
		return nil, err
	}

	commands := make([]Command, 0, len(items))
	for _, item := range items {
		name := item.Get("name").String()
		if name == "" {
			continue
		}
		commands = append(commands, Command{
			Name:        name,
			Description: item.Get("description").String(),
			Template:    item.Get("template").String(),
			Agent:       item.Get("agent").String(),
		})
	}
	return commands, nil
}

func (c *Client) getArray(ctx context.Context, path string) ([]gjson.Result, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	result := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) || !result.IsArray() {
		return nil, errors.Mark(errors.Newf("GET %s: expected a JSON array", path), ErrBadResponse)
	}
	return result.Array(), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.password != "" {
		req.SetBasicAuth(BasicAuthUser, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, classify(err, method+" "+path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %s %s", method, path), classifyMark(err))
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Mark(
			errors.Newf("%s %s: unexpected status %d", method, path, resp.StatusCode),
			ErrBadResponse,
		)
	}
	return data, nil
}

// classify wraps a transport error and marks it with its failure class.
func classify(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), classifyMark(err))
}

func classifyMark(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrTimeout
	}
	return ErrUnreachable
}
