// Package scheduler drives the cooperative, single-threaded frame loop
// (spec §4.5, §5): sample, render, emit, wait, repeat. It is the only
// package that sequences the samplers and panel renderers against real
// time and real input; everything it calls is otherwise pure.
package scheduler

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/errlog"
	"github.com/sysdash/sysdash/pkg/help"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/panel"
	"github.com/sysdash/sysdash/pkg/proctable"
	"github.com/sysdash/sysdash/pkg/sampler/cpu"
	"github.com/sysdash/sysdash/pkg/sampler/mem"
	"github.com/sysdash/sysdash/pkg/sampler/net"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
	"github.com/sysdash/sysdash/pkg/signals"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// Terminal is the subset of pkg/term.Surface the scheduler needs. It is
// its own interface (rather than depending on *term.Surface directly) so
// tests can drive the loop against a fake.
type Terminal interface {
	PollKey(timeout time.Duration) (byte, bool)
	ResizeCh() <-chan struct{}
	Size() (rows, cols int, err error)
	Write(b []byte) (int, error)
	Clear()
}

// lateFrameThreshold is the number of consecutive overrun frames (spec
// §4.5 step 7) before update_ms is backed off.
const lateFrameThreshold = 5

const updateMsStep = 100
const updateMsMin = 100
const updateMsMax = 86_400_000

type confirm struct {
	label string
	pid   int32
	sig   syscall.Signal
}

// Scheduler owns every sampler, panel renderer, and piece of transient UI
// state (filter input, pending confirmation, help overlay) for one run of
// the program.
type Scheduler struct {
	term Terminal
	sig  *signals.Handler
	log  *errlog.Log
	cfg  *config.Config
	th   theme.Theme

	cpuS  *cpu.Sampler
	memS  *mem.Sampler
	netS  *net.Sampler
	procS *proc.Sampler

	cpuP    *panel.CPU
	memP    panel.Mem
	netP    *panel.Net
	procP   panel.Proc
	detailP *panel.Detail

	table *proctable.Table

	geom        layout.Geometry
	rows, cols  int
	resized     bool
	pinnedPrev  bool
	quit        bool
	sleepy      bool

	lateStreak int

	helpVisible            bool
	filterInput            bool
	filterBuf              string
	filterPrev             string // table filter when filter input began, restored on Esc
	pending                *confirm
	lastClock              string
	immediateRedrawPending bool

	onSuspend func() error
	onResume  func() error

	// save persists cfg to disk; nil disables persistence (used by tests).
	save func(config.Config) error
}

// Option configures optional scheduler behavior (suspend/resume hooks,
// config persistence) without widening New's required parameter list.
type Option func(*Scheduler)

// WithSuspendHooks wires the terminal-mode toggles the scheduler calls
// around a SIGTSTP/SIGCONT cycle (spec §5's "cleanly detaches the UI
// before stopping").
func WithSuspendHooks(onSuspend, onResume func() error) Option {
	return func(s *Scheduler) { s.onSuspend, s.onResume = onSuspend, onResume }
}

// WithConfigSave wires config persistence, called whenever update_ms or
// proc_sorting changes (spec §5's "file-system writes ... happen only at
// clean exit or on toggled options").
func WithConfigSave(save func(config.Config) error) Option {
	return func(s *Scheduler) { s.save = save }
}

// New builds a scheduler. nCores is the physical core count (for
// temperature-sibling mirroring); iface is the network interface sampled
// every frame.
func New(t Terminal, sig *signals.Handler, log *errlog.Log, cfg *config.Config, th theme.Theme, nCores int, iface string, opts ...Option) *Scheduler {
	tbl := proctable.New()
	tbl.SetSort(cfg.ProcSorting, cfg.ProcReversed)

	s := &Scheduler{
		term: t, sig: sig, log: log, cfg: cfg, th: th,
		cpuS: cpu.New(log, nCores, cfg.CustomCPUName), memS: mem.New(log), netS: net.New(log, iface), procS: proc.New(log),
		procP: panel.Proc{}, table: tbl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the frame loop until a quit signal or fatal terminal error.
func (s *Scheduler) Run() error {
	for !s.quit {
		select {
		case <-s.sig.Quit:
			s.quit = true
			continue
		case <-s.sig.Suspend:
			s.handleSuspend()
			continue
		default:
		}

		if err := s.waitForFit(); err != nil {
			return err
		}
		if s.quit {
			return nil
		}

		s.frame()
	}
	return nil
}

// handleSuspend detaches the terminal, stops the process for an external
// resume, then reattaches once SIGCONT arrives (spec §5).
func (s *Scheduler) handleSuspend() {
	if s.onSuspend != nil {
		if err := s.onSuspend(); err != nil {
			s.log.Error(err)
		}
	}
	s.sleepy = true
	_ = syscall.Kill(os.Getpid(), syscall.SIGSTOP)

	select {
	case <-s.sig.Resume:
	case <-s.sig.Quit:
		s.quit = true
	}

	if s.onResume != nil {
		if err := s.onResume(); err != nil {
			s.log.Error(err)
		}
	}
	s.sleepy = false
	s.resized = true // force a full chrome redraw from the restored terminal size
}

// waitForFit blocks, redrawing an on-screen prompt, until the terminal is
// at least 80x25 (spec §4.3).
func (s *Scheduler) waitForFit() error {
	for {
		rows, cols, err := s.term.Size()
		if err != nil {
			return err
		}
		if layout.Fits(rows, cols) {
			if rows != s.rows || cols != s.cols {
				s.resized = true
			}
			s.rows, s.cols = rows, cols
			return nil
		}

		s.term.Clear()
		msg := fmt.Sprintf("terminal too small (%dx%d, need %dx%d)", cols, rows, layout.MinCols, layout.MinRows)
		var out draw.List
		out.MoveTo(0, 0)
		out.SetFG(s.th.MainFG)
		out.PutText(msg)
		out.Reset()
		s.term.Write([]byte(draw.Render(out, 0, 0)))

		select {
		case <-s.sig.Quit:
			s.quit = true
			return nil
		case <-s.term.ResizeCh():
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// applyGeometry recomputes the panel layout and (re)sizes the CPU/NET/
// detail graph panels whose history rings depend on panel width. The
// width comparison must happen against the outgoing geometry, before
// s.geom is overwritten with the new one.
func (s *Scheduler) applyGeometry() {
	_, pinned := s.table.Pinned()
	newGeom := layout.Compute(s.rows, s.cols, pinned)

	if s.cpuP == nil || newGeom.CPU.Width != s.geom.CPU.Width {
		s.cpuP = panel.NewCPU(newGeom.CPU.Width)
	}
	if s.netP == nil || newGeom.NET.Width != s.geom.NET.Width {
		s.netP = panel.NewNet(newGeom.NET.Width)
	}
	if pinned && (s.detailP == nil || newGeom.Detail.Width != s.geom.Detail.Width) {
		s.detailP = panel.NewDetail(newGeom.Detail.Width)
	}

	s.geom = newGeom
}

// frame runs one iteration of the loop described in spec §4.5.
func (s *Scheduler) frame() {
	tsStart := time.Now()

	_, pinnedNow := s.table.Pinned()
	pinnedChanged := pinnedNow != s.pinnedPrev
	s.pinnedPrev = pinnedNow

	// A real terminal resize always recomputes geometry; a pin/unpin also
	// does, since layout.Compute's PROC/Detail split depends on pinnedDetail
	// -- but it shouldn't force the unrelated CPU/MEM/NET panels to treat
	// this as "resized" for their own append/rebuild decision (each panel
	// already re-detects its own rect/column changes independently, so
	// passing the real resize flag through is enough; see cpu.go/net.go's
	// geometryChanged checks).
	if s.resized || pinnedChanged {
		s.applyGeometry()
	}

	var buf []byte
	appendPanel := func(rect layout.Rect, list draw.List) {
		buf = append(buf, draw.Render(list, rect.Line, rect.Col)...)
	}

	if s.helpVisible {
		buf = append(buf, draw.Render(help.Render(layout.Rect{Height: s.rows, Width: s.cols}, s.th), 0, 0)...)
		s.emit(buf)
		s.idle(tsStart)
		return
	}

	pinnedPID, _ := s.table.Pinned()
	rows, pinnedKilled := s.procS.Sample(pinnedPID)
	s.table.SetPageHeight(s.geom.PROC.Height - 3)
	s.table.SetRows(rows, pinnedKilled)
	appendPanel(s.geom.PROC, s.procP.Render(s.geom.PROC, s.table, s.th, s.procOverlay()))
	if pinnedNow && s.detailP != nil {
		if row, ok := s.table.PinnedRow(); ok || s.table.DetailedKilled() {
			appendPanel(s.geom.Detail, s.detailP.Render(s.geom.Detail, row, s.table.DetailedKilled(), s.th, s.resized))
		}
	}
	if s.pollBetweenSteps() {
		s.emit(buf)
		return
	}

	cpuSnap, err := s.cpuS.Sample(s.cfg.CheckTemp)
	if err != nil {
		s.log.Error(err)
	}
	appendPanel(s.geom.CPU, s.cpuP.Render(s.geom.CPU, cpuSnap, s.th, s.resized))
	if s.pollBetweenSteps() {
		s.emit(buf)
		return
	}

	memSnap := s.memS.Sample()
	appendPanel(s.geom.MEM, s.memP.Render(s.geom.MEM, memSnap, s.th))
	if s.pollBetweenSteps() {
		s.emit(buf)
		return
	}

	netSnap := s.netS.Sample()
	appendPanel(s.geom.NET, s.netP.Render(s.geom.NET, netSnap, s.th, s.resized, netSnap.Redraw))

	s.resized = false
	s.emit(buf)
	s.idle(tsStart)
}

func (s *Scheduler) emit(buf []byte) {
	if len(buf) == 0 {
		return
	}
	if _, err := s.term.Write(buf); err != nil {
		s.log.Error(err)
	}
}

// pollBetweenSteps gives pending input a chance to run between sampler
// steps (spec §4.5 step 4); it returns true if a resize arrived mid-frame,
// in which case the caller aborts the rest of the frame.
func (s *Scheduler) pollBetweenSteps() bool {
	if b, ok := s.term.PollKey(0); ok {
		s.handleByte(b)
	}
	select {
	case <-s.term.ResizeCh():
		s.resized = true
		return true
	default:
		return false
	}
}

// idle implements spec §4.5 steps 6-7: sleep out the rest of update_ms in
// bounded slices, polling input each slice, then self-tune update_ms if
// the budget was repeatedly blown.
func (s *Scheduler) idle(tsStart time.Time) {
	slice := 500 * time.Millisecond
	if s.filterInput {
		slice = 50 * time.Millisecond
	}

	deadline := tsStart.Add(time.Duration(s.cfg.UpdateMs) * time.Millisecond)
	late := time.Until(deadline) <= 0
	for {
		timeLeft := time.Until(deadline)
		if timeLeft <= 0 || s.resized {
			break
		}
		wait := slice
		if timeLeft < wait {
			wait = timeLeft
		}
		if b, ok := s.term.PollKey(wait); ok {
			s.handleByte(b)
			if s.immediateRedrawPending {
				s.renderProcOnly()
				s.immediateRedrawPending = false
			}
		}
		select {
		case <-s.term.ResizeCh():
			s.resized = true
		default:
		}
		s.redrawClockIfChanged()
	}

	if late {
		s.lateStreak++
		if s.lateStreak >= lateFrameThreshold {
			s.lateStreak = 0
			s.cfg.UpdateMs += updateMsStep
			if s.cfg.UpdateMs > updateMsMax {
				s.cfg.UpdateMs = updateMsMax
			}
			s.persistConfig()
		}
	} else {
		s.lateStreak = 0
	}
}

// procOverlay builds the process panel's transient-input echo (spec §6):
// the live filter buffer while typing, or the pending T/K/I confirmation,
// neither of which the panel renderer can see on its own since both live
// as scheduler-only state.
func (s *Scheduler) procOverlay() panel.ProcOverlay {
	overlay := panel.ProcOverlay{
		FilterActive: s.filterInput,
		FilterBuf:    s.filterBuf,
	}
	if s.pending != nil {
		overlay.ConfirmActive = true
		overlay.ConfirmLabel = s.pending.label
		overlay.ConfirmPID = s.pending.pid
	}
	return overlay
}

// renderProcOnly re-renders just the process panel (and detail pane, if
// pinned) for the "immediate now redraw" responsiveness rule (spec §5).
func (s *Scheduler) renderProcOnly() {
	var buf []byte
	buf = append(buf, draw.Render(s.procP.Render(s.geom.PROC, s.table, s.th, s.procOverlay()), s.geom.PROC.Line, s.geom.PROC.Col)...)
	if _, pinned := s.table.Pinned(); pinned && s.detailP != nil {
		if row, ok := s.table.PinnedRow(); ok || s.table.DetailedKilled() {
			buf = append(buf, draw.Render(s.detailP.Render(s.geom.Detail, row, s.table.DetailedKilled(), s.th, false), s.geom.Detail.Line, s.geom.Detail.Col)...)
		}
	}
	s.emit(buf)
}

func (s *Scheduler) persistConfig() {
	if s.save == nil {
		return
	}
	if err := s.save(*s.cfg); err != nil {
		s.log.Error(err)
	}
}

// redrawClockIfChanged implements spec §4.5 step 6's "redraw the clock
// glyph if its string changed": a single write of the clock string at the
// CPU panel's top right corner, bypassing the full frame buffer entirely.
func (s *Scheduler) redrawClockIfChanged() {
	if s.cfg.DrawClock == "" || s.helpVisible {
		return
	}
	cur := utils.Strftime(s.cfg.DrawClock, time.Now())
	if cur == s.lastClock {
		return
	}
	s.lastClock = cur

	col := s.geom.CPU.Width - len(cur) - 2
	if col < 0 {
		col = 0
	}
	var out draw.List
	out.MoveTo(0, col)
	out.SetFG(s.th.Title)
	out.PutText(cur)
	out.Reset()
	s.emit([]byte(draw.Render(out, s.geom.CPU.Line, s.geom.CPU.Col)))
}
