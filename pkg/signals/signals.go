// Package signals translates OS signals into the scheduler's flags (spec
// §5): SIGINT/SIGTERM/SIGQUIT quit, SIGWINCH resizes, SIGTSTP suspends,
// SIGCONT resumes.
package signals

import (
	"os"
	"os/signal"
	"syscall"
)

// Handler exposes the scheduler-facing channels for each signal class.
// Multiple signals of the same class collapse onto one pending
// notification, matching the "set a flag, don't queue" semantics spec §5
// describes.
type Handler struct {
	Quit    <-chan struct{}
	Resize  <-chan struct{}
	Suspend <-chan struct{}
	Resume  <-chan struct{}

	quit    chan struct{}
	resize  chan struct{}
	suspend chan struct{}
	resume  chan struct{}
	raw     chan os.Signal
}

// New installs signal handling and returns a Handler. Call Stop to
// release the underlying os/signal registration.
func New() *Handler {
	h := &Handler{
		quit:    make(chan struct{}, 1),
		resize:  make(chan struct{}, 1),
		suspend: make(chan struct{}, 1),
		resume:  make(chan struct{}, 1),
		raw:     make(chan os.Signal, 8),
	}
	h.Quit, h.Resize, h.Suspend, h.Resume = h.quit, h.resize, h.suspend, h.resume

	signal.Notify(h.raw,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
		syscall.SIGWINCH, syscall.SIGTSTP, syscall.SIGCONT,
	)
	go h.dispatch()
	return h
}

func (h *Handler) dispatch() {
	for sig := range h.raw {
		var target chan struct{}
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			target = h.quit
		case syscall.SIGWINCH:
			target = h.resize
		case syscall.SIGTSTP:
			target = h.suspend
		case syscall.SIGCONT:
			target = h.resume
		default:
			continue
		}
		select {
		case target <- struct{}{}:
		default:
		}
	}
}

// Stop unregisters signal handling.
func (h *Handler) Stop() {
	signal.Stop(h.raw)
	close(h.raw)
}
