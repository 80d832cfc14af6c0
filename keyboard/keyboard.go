// Package keyboard turns single key presses into operator commands.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pkg/term"
	"github.com/sarchlab/lockstep/abtest"
)

// TTYPath is the terminal opened by OpenTTY.
const TTYPath = "/dev/tty"

const keyEscape = 0x1b

// Sink receives the commands. A driver.Driver is a Sink.
type Sink interface {
	Submit(c abtest.Command) error
}

// CommandFor returns the command bound to a key.
func CommandFor(key byte) (abtest.Command, bool) {
	switch key {
	case ' ':
		return abtest.CommandRunPause, true
	case 'm', 'M':
		return abtest.CommandSingleStep, true
	case '+', '=':
		return abtest.CommandSpeedUp, true
	case '-', '_':
		return abtest.CommandSlowDown, true
	case 's', 'S':
		return abtest.CommandSwap, true
	case 'q', 'Q', keyEscape:
		return abtest.CommandQuit, true
	default:
		return 0, false
	}
}

// Help describes the key bindings.
func Help() string {
	return "space: run/pause  m: step  +/-: speed  s: swap  q: quit"
}

// Pump reads keys from r and submits their commands until r is exhausted,
// ctx is done, or the sink refuses a command. A quit key ends the pump after
// it is submitted. A read that is already blocked is not interrupted by ctx.
func Pump(ctx context.Context, r io.Reader, sink Sink) error {
	buf := make([]byte, 16)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := r.Read(buf)
		for _, key := range buf[:n] {
			c, ok := CommandFor(key)
			if !ok {
				continue
			}

			if serr := sink.Submit(c); serr != nil {
				return fmt.Errorf("keyboard: %s: %w", c, serr)
			}

			if c == abtest.CommandQuit {
				return nil
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("keyboard: %w", err)
		}
	}
}

// TTY is the controlling terminal in cbreak mode: keys arrive one at a time
// without echo processing by the line editor.
type TTY struct {
	t *term.Term
}

// OpenTTY opens TTYPath in cbreak mode.
func OpenTTY() (*TTY, error) {
	t, err := term.Open(TTYPath, term.CBreakMode)
	if err != nil {
		return nil, fmt.Errorf("keyboard: %w", err)
	}

	return &TTY{t: t}, nil
}

// Read reads pending key presses.
func (t *TTY) Read(p []byte) (int, error) {
	return t.t.Read(p)
}

// Close restores the terminal mode and closes it.
func (t *TTY) Close() error {
	return errors.Join(t.t.Restore(), t.t.Close())
}
