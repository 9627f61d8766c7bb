package opencode

import (
	"context"
	"net/http"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// TUI commands understood by tui.command.execute.
const (
	CommandPromptClear  = "prompt.clear"
	CommandPromptSubmit = "prompt.submit"
	CommandSessionNew   = "session.new"
	CommandSessionList  = "session.list"
	CommandModelList    = "model.list"
)

// Commands lists the TUI commands known to exist, in help order.
var Commands = []string{
	CommandPromptClear,
	CommandPromptSubmit,
	CommandSessionNew,
	CommandSessionList,
	CommandModelList,
}

type event struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// SubmitOptions controls how a prompt reaches the server's TUI.
type SubmitOptions struct {
	// Clear empties the TUI prompt before appending.
	Clear bool
	// Execute submits the appended prompt to the session.
	Execute bool
}

// Submit publishes prompt to the server's TUI.
func (c *Client) Submit(ctx context.Context, prompt string, opts SubmitOptions) error {
	if opts.Clear {
		if err := c.ExecuteCommand(ctx, CommandPromptClear); err != nil {
			return err
		}
	}
	if err := c.AppendPrompt(ctx, prompt); err != nil {
		return err
	}
	if opts.Execute {
		return c.ExecuteCommand(ctx, CommandPromptSubmit)
	}
	return nil
}

// AppendPrompt appends text to the TUI prompt.
func (c *Client) AppendPrompt(ctx context.Context, text string) error {
	return c.publish(ctx, event{
		Type:       "tui.prompt.append",
		Properties: map[string]any{"text": text},
	})
}

// ExecuteCommand runs a TUI command such as prompt.submit or session.new.
func (c *Client) ExecuteCommand(ctx context.Context, command string) error {
	if command == "" {
		return errors.New("command name is empty")
	}
	return c.publish(ctx, event{
		Type:       "tui.command.execute",
		Properties: map[string]any{"command": command},
	})
}

func (c *Client) publish(ctx context.Context, ev event) error {
	_, err := c.do(ctx, http.MethodPost, "/tui/publish", ev)
	return err
}
