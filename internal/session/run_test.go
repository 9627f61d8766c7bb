package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/editor"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
)

type fakeTTY struct {
	io.Reader
	io.Writer
}

func newTTY(input string) *fakeTTY {
	return &fakeTTY{Reader: strings.NewReader(input), Writer: &bytes.Buffer{}}
}

func TestProgramError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"clean exit", nil, false},
		{"interrupt", tea.ErrInterrupted, false},
		{"killed by interrupt", fmt.Errorf("%w: %w", tea.ErrProgramKilled, tea.ErrInterrupted), false},
		{"killed by context", fmt.Errorf("%w: %w", tea.ErrProgramKilled, context.Canceled), false},
		{"panic", fmt.Errorf("%w: %w", tea.ErrProgramKilled, tea.ErrProgramPanic), true},
		{"goroutine panic", tea.ErrProgramPanic, true},
		{"input failure", errors.New("read /dev/tty: bad file descriptor"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := programError(tt.err)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestRun_PanicIsAnError(t *testing.T) {
	tr := &fakeTransport{}
	opts := Options{
		Mode:      ModeAsk,
		Seed:      "@diff",
		Context:   fileContext(),
		Transport: tr,
		Expander: editor.Expander{Differ: editor.DifferFunc(func(context.Context, string) (string, error) {
			panic("diff exploded")
		})},
		Logger: logging.NewDiscard(),
	}

	res, err := Run(context.Background(), opts, newTTY("\r"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tea.ErrProgramPanic))
	assert.False(t, res.Submitted())
	assert.Empty(t, tr.submits)
}

func TestRun_CancelledContextIsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &fakeTransport{}
	res, err := Run(ctx, Options{
		Mode:      ModeAsk,
		Context:   fileContext(),
		Transport: tr,
		Logger:    logging.NewDiscard(),
	}, newTTY(""))
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Empty(t, tr.submits)
}
