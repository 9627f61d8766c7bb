package session

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// Run drives a session on the terminal rw until it finishes. A cancelled
// ctx or an interrupt ends the session as Cancelled. A panic inside the
// session is returned as an error.
func Run(ctx context.Context, opts Options, rw io.ReadWriter) (Result, error) {
	m := New(ctx, opts).Start()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(rw),
		tea.WithOutput(rw),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	if err := programError(err); err != nil {
		return Result{State: StateCancelled}, err
	}
	if err != nil {
		m.log.Debug("session interrupted", "error", err)
	}

	res := m.Result()
	if !res.Submitted() {
		res.State = StateCancelled
	}
	m.log.Debug("session finished", "state", res.State)
	return res, nil
}

// programError reports the bubbletea exit errors that are failures.
// Interrupts and kills through the context are not.
func programError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramPanic):
		return errors.Wrap(err, "session panicked")
	case errors.Is(err, tea.ErrInterrupted), errors.Is(err, tea.ErrProgramKilled):
		return nil
	}
	return errors.Wrap(err, "running session")
}
