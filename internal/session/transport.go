package session

import (
	"context"

	"github.com/wk-j/opencode-helix/internal/opencode"
)

// Transport is the part of the server client a session uses.
type Transport interface {
	ListAgents(ctx context.Context) ([]opencode.Agent, error)
	ListCommands(ctx context.Context) ([]opencode.Command, error)
	Submit(ctx context.Context, prompt string, opts opencode.SubmitOptions) error
}

var _ Transport = (*opencode.Client)(nil)
