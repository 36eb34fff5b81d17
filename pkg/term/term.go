// Package term is the terminal surface (spec §2, §5): raw mode, ANSI
// output, cursor positioning, and single-keystroke input with a bounded
// timeout. It is the only part of the system that touches the real
// terminal, so every other package operates on plain strings/draw.Lists
// that this package's Write applies.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Surface owns the controlling terminal: raw-mode state, output
// buffering, and a background keystroke reader. It is stateless beyond
// that (spec §2: "pure sink/source; stateless except for a cursor").
type Surface struct {
	in     *os.File
	out    io.Writer
	state  *term.State
	keys   chan byte
	resize chan struct{}
}

// Open puts the controlling terminal into raw mode and starts the
// background keystroke reader. Callers must defer Close to restore the
// terminal on exit (spec §7: cursor/attrs are always restored at clean
// exit).
func Open(in *os.File, out io.Writer) (*Surface, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("term: stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		in:     in,
		out:    out,
		state:  state,
		keys:   make(chan byte, 64),
		resize: make(chan struct{}, 1),
	}
	go s.readLoop()
	return s, nil
}

// Close restores the terminal's original mode. Safe to call once.
func (s *Surface) Close() error {
	return term.Restore(int(s.in.Fd()), s.state)
}

// readLoop feeds raw input bytes to s.keys. It runs for the life of the
// process; the scheduler never blocks on it directly, only via
// PollKey's bounded select.
func (s *Surface) readLoop() {
	r := bufio.NewReader(s.in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		s.keys <- b
	}
}

// PollKey waits up to timeout for one input byte, returning ok=false on
// timeout. This is the bounded-timeout poll spec §5 names as one of the
// program's only two blocking call sites.
func (s *Surface) PollKey(timeout time.Duration) (b byte, ok bool) {
	select {
	case b := <-s.keys:
		return b, true
	case <-time.After(timeout):
		return 0, false
	}
}

// NotifyResize is called for each SIGWINCH to post a pending resize on
// ResizeCh, which the scheduler checks after every PollKey; a PollKey wait
// already in progress is not interrupted and runs to its timeout.
func (s *Surface) NotifyResize() {
	select {
	case s.resize <- struct{}{}:
	default:
	}
}

// ResizeCh exposes the resize notification channel for the scheduler to
// select on alongside PollKey.
func (s *Surface) ResizeCh() <-chan struct{} {
	return s.resize
}

// Size returns the current terminal rows, cols.
func (s *Surface) Size() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(s.in.Fd()))
	return rows, cols, err
}

// Write emits raw bytes (an already-rendered draw.List) to the terminal in
// one call, matching spec §4.5 step 5's "emit the composed draw buffer in
// one write".
func (s *Surface) Write(b []byte) (int, error) {
	return s.out.Write(b)
}

// HideCursor and ShowCursor toggle the terminal cursor's visibility; used
// while drawing a frame to avoid visible cursor flicker.
func (s *Surface) HideCursor() { fmt.Fprint(s.out, "\x1b[?25l") }
func (s *Surface) ShowCursor() { fmt.Fprint(s.out, "\x1b[?25h") }

// AltScreenOn and AltScreenOff switch to/from the terminal's alternate
// screen buffer, so the dashboard doesn't scroll the user's shell history.
func (s *Surface) AltScreenOn()  { fmt.Fprint(s.out, "\x1b[?1049h") }
func (s *Surface) AltScreenOff() { fmt.Fprint(s.out, "\x1b[?1049l") }

// Clear erases the whole screen and homes the cursor.
func (s *Surface) Clear() { fmt.Fprint(s.out, "\x1b[2J\x1b[H") }

// Suspend restores the terminal to its original (cooked) mode and leaves
// the alternate screen, the detach half of spec §5's SIGTSTP handling
// (sleep_() in the original: "tput rmcup; stty echo; tput cnorm").
func (s *Surface) Suspend() error {
	s.ShowCursor()
	s.AltScreenOff()
	return term.Restore(int(s.in.Fd()), s.state)
}

// Resume re-enters raw mode and the alternate screen after a SIGCONT,
// undoing Suspend (resume_() in the original: "tput smcup; stty -echo;
// tput civis").
func (s *Surface) Resume() error {
	state, err := term.MakeRaw(int(s.in.Fd()))
	if err != nil {
		return err
	}
	s.state = state
	s.AltScreenOn()
	s.HideCursor()
	return nil
}
