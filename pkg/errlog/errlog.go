// Package errlog implements the spec §7 human-readable error log: lines of
// the form "HH:MM:SS ERROR: …", with a mute rule for consecutive identical
// entries (same source line, same message): the first two are written
// as-is, the third once with a "(repeated, further occurrences muted)"
// suffix, and later repeats are dropped instead of written every frame.
package errlog

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"
)

// Log appends mute-ruled error lines to an underlying writer.
type Log struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	now     func() time.Time

	lastSite  string
	lastMsg   string
	runLength int
}

// New wraps w as an error log. If enabled is false, Error is a no-op,
// matching the `error_logging` config key.
func New(w io.Writer, enabled bool) *Log {
	return &Log{w: w, enabled: enabled, now: time.Now}
}

// Error records an error, attributing it to the caller's file:line so the
// mute rule can detect repeats from the same call site with the same text.
func (l *Log) Error(err error) {
	if err == nil {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	l.record(fmt.Sprintf("%s:%d", file, line), err.Error())
}

// Errorf is like Error but formats a message directly, for call sites that
// tolerate a failure without a Go error value (e.g. an empty parsed field).
func (l *Log) Errorf(format string, args ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	l.record(fmt.Sprintf("%s:%d", file, line), fmt.Sprintf(format, args...))
}

func (l *Log) record(site, msg string) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if site == l.lastSite && msg == l.lastMsg {
		l.runLength++
		switch {
		case l.runLength < 3:
			l.writeLine(msg)
		case l.runLength == 3:
			l.writeLine(msg + " (repeated, further occurrences muted)")
		default:
			// muted
		}
		return
	}

	l.lastSite = site
	l.lastMsg = msg
	l.runLength = 1
	l.writeLine(msg)
}

func (l *Log) writeLine(msg string) {
	fmt.Fprintf(l.w, "%s ERROR: %s\n", l.now().Format("15:04:05"), msg)
}
