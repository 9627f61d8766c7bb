// Package terminal acquires the controlling terminal for an interactive
// session and guarantees it is handed back in its original mode.
//
// The editor captures the bridge's stdout, so the session talks to
// /dev/tty directly instead of the standard streams.
package terminal

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// DevicePath is the controlling terminal device.
var DevicePath = "/dev/tty"

// ErrUnavailable is returned when no usable terminal can be opened.
var ErrUnavailable = errors.New("terminal unavailable")

// Reset sequences written on release: leave the alternate screen, show the cursor.
const resetSequence = "\x1b[?1049l\x1b[?25h"

// TTY is an acquired terminal. Release must be called exactly once per
// acquisition; further calls are no-ops.
type TTY struct {
	file  *os.File
	state *term.State
	once  sync.Once
	err   error
}

// Open acquires the terminal at DevicePath and records its current mode.
func Open() (*TTY, error) {
	return OpenPath(DevicePath)
}

// OpenPath acquires the terminal device at path.
func OpenPath(path string) (*TTY, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "opening %s", path), ErrUnavailable)
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		f.Close()
		return nil, errors.Mark(errors.Newf("%s is not a terminal", path), ErrUnavailable)
	}

	state, err := term.GetState(fd)
	if err != nil {
		f.Close()
		return nil, errors.Mark(errors.Wrap(err, "reading terminal state"), ErrUnavailable)
	}

	return &TTY{file: f, state: state}, nil
}

// File returns the terminal device for reading keys and writing frames.
func (t *TTY) File() *os.File {
	return t.file
}

// Size reports the terminal dimensions.
func (t *TTY) Size() (width, height int, err error) {
	return term.GetSize(int(t.file.Fd()))
}

// Release restores the recorded terminal mode, shows the cursor and closes
// the device.
func (t *TTY) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		if t.file == nil {
			return
		}
		var errs []error
		if t.state != nil {
			if err := term.Restore(int(t.file.Fd()), t.state); err != nil {
				errs = append(errs, errors.Wrap(err, "restoring terminal mode"))
			}
		}
		if _, err := io.WriteString(t.file, resetSequence); err != nil {
			errs = append(errs, errors.Wrap(err, "resetting terminal"))
		}
		if err := t.file.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "closing terminal"))
		}
		if len(errs) > 0 {
			t.err = errs[0]
		}
	})
	return t.err
}

// With acquires the terminal, runs fn and releases the terminal on every
// exit path, including a panic inside fn, which is re-raised after release.
func With(open func() (*TTY, error), fn func(*TTY) error) (err error) {
	if open == nil {
		open = Open
	}
	tty, err := open()
	if err != nil {
		return err
	}

	defer func() {
		r := recover()
		if relErr := tty.Release(); relErr != nil && err == nil {
			err = relErr
		}
		if r != nil {
			panic(r)
		}
	}()

	return fn(tty)
}
