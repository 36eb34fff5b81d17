package scheduler

import (
	"syscall"
	"time"
	"unicode"

	"github.com/sysdash/sysdash/pkg/config"
)

// sortCycle is the fixed left/right column order (spec §6's
// proc_sorting enum, in the order it's declared there).
var sortCycle = []config.ProcSorting{
	config.SortPID,
	config.SortProgram,
	config.SortArguments,
	config.SortThreads,
	config.SortUser,
	config.SortMemory,
	config.SortCPULazy,
	config.SortCPUResponsive,
}

// Logical key codes for keys that arrive as multi-byte CSI sequences,
// kept out of the byte range so they can't collide with a literal
// character.
const (
	keyUp = iota + 256
	keyDown
	keyLeft
	keyRight
	keyPgUp
	keyPgDn
	keyHome
	keyEnd
	keyF1
	keyF2
)

const csiPollTimeout = 15 * time.Millisecond

// handleByte consumes one polled input byte, assembling a trailing CSI or
// SS3 sequence if present (arrows, PgUp/PgDn, Home/End, F1/F2). xterm
// emits Home/End as either "ESC[H"/"ESC[F" or the numbered forms
// "ESC[1~"/"ESC[4~"; both are accepted. F1/F2 arrive as the SS3 forms
// "ESC O P"/"ESC O Q" (the common xterm default) or the numbered CSI
// forms "ESC[11~"/"ESC[12~" (legacy/rxvt-style terminals); both are
// accepted. There's no pack precedent for CSI parsing to ground this on:
// the dropped TUI framework hid input decoding behind its own event loop,
// so this is a direct, minimal reading of the xterm CSI/SS3 tables.
func (s *Scheduler) handleByte(b byte) {
	if b != 0x1b {
		s.dispatchKey(int(b))
		return
	}

	b2, ok := s.term.PollKey(csiPollTimeout)
	if !ok {
		s.dispatchKey(0x1b)
		return
	}
	if b2 == 'O' {
		b3, ok := s.term.PollKey(csiPollTimeout)
		if !ok {
			return
		}
		switch b3 {
		case 'P':
			s.dispatchKey(keyF1)
		case 'Q':
			s.dispatchKey(keyF2)
		}
		return
	}
	if b2 != '[' {
		return
	}

	b3, ok := s.term.PollKey(csiPollTimeout)
	if !ok {
		return
	}

	switch b3 {
	case 'A':
		s.dispatchKey(keyUp)
	case 'B':
		s.dispatchKey(keyDown)
	case 'C':
		s.dispatchKey(keyRight)
	case 'D':
		s.dispatchKey(keyLeft)
	case 'H':
		s.dispatchKey(keyHome)
	case 'F':
		s.dispatchKey(keyEnd)
	case '1', '4', '5', '6':
		tail, ok := s.term.PollKey(csiPollTimeout)
		if !ok {
			return
		}
		if b3 == '1' && tail == '1' {
			if t2, ok := s.term.PollKey(csiPollTimeout); ok && t2 == '~' {
				s.dispatchKey(keyF1)
			}
			return
		}
		if b3 == '1' && tail == '2' {
			if t2, ok := s.term.PollKey(csiPollTimeout); ok && t2 == '~' {
				s.dispatchKey(keyF2)
			}
			return
		}
		if tail == '~' {
			switch b3 {
			case '1':
				s.dispatchKey(keyHome)
			case '4':
				s.dispatchKey(keyEnd)
			case '5':
				s.dispatchKey(keyPgUp)
			case '6':
				s.dispatchKey(keyPgDn)
			}
		}
	}
}

// dispatchKey routes one logical key to the mode currently accepting
// input: a pending kill-signal confirmation, filter text entry, the help
// overlay, or the normal process-panel bindings (spec §6).
func (s *Scheduler) dispatchKey(k int) {
	if s.pending != nil {
		s.handleConfirmKey(k)
		return
	}
	if s.filterInput {
		s.handleFilterKey(k)
		return
	}
	if s.helpVisible {
		switch k {
		case 'h', 'H', 'm', 'M', 0x1b:
			s.helpVisible = false
		}
		return
	}

	switch k {
	case keyUp:
		s.table.MoveSelection(-1)
		s.immediateRedrawPending = true
	case keyDown:
		s.table.MoveSelection(1)
		s.immediateRedrawPending = true
	case keyPgDn:
		s.table.PageDown()
		s.immediateRedrawPending = true
	case keyPgUp:
		s.table.PageUp()
		s.immediateRedrawPending = true
	case keyHome:
		s.table.Home()
		s.immediateRedrawPending = true
	case keyEnd:
		s.table.End()
		s.immediateRedrawPending = true
	case keyLeft:
		s.cycleSort(-1)
	case keyRight:
		s.cycleSort(1)
	case '\r', '\n':
		if pid, ok := s.selectedOrPinnedPID(); ok {
			s.table.TogglePin(pid)
		}
	case 'R', 'r':
		s.table.ReverseSort()
		s.saveSort()
		s.immediateRedrawPending = true
	case 'F', 'f':
		s.filterInput = true
		s.filterBuf = s.table.Filter()
		s.filterPrev = s.filterBuf
		s.immediateRedrawPending = true
	case 'C', 'c':
		s.table.SetFilter("")
		s.immediateRedrawPending = true
	case 'T', 't':
		s.requestSignal(syscall.SIGTERM, "TERM")
	case 'K', 'k':
		s.requestSignal(syscall.SIGKILL, "KILL")
	case 'I', 'i':
		s.requestSignal(syscall.SIGINT, "INT")
	case '+', 'A', 'a':
		s.adjustUpdateMs(updateMsStep)
	case '-', 'S', 's':
		s.adjustUpdateMs(-updateMsStep)
	case 'H', 'h', keyF1:
		s.helpVisible = true
	case 'O', 'o', keyF2:
		s.helpVisible = true // no separate options screen; reuses the key legend, see DESIGN.md
	case 'M', 'm', 0x1b:
		s.helpVisible = false
	case 'Q', 'q':
		s.quit = true
	}
}

func (s *Scheduler) cycleSort(delta int) {
	col, reversed := s.table.Sort()
	idx := 0
	for i, c := range sortCycle {
		if c == col {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(sortCycle)) % len(sortCycle)
	s.table.SetSort(sortCycle[idx], reversed)
	s.saveSort()
	s.immediateRedrawPending = true
}

func (s *Scheduler) saveSort() {
	col, reversed := s.table.Sort()
	s.cfg.ProcSorting = col
	s.cfg.ProcReversed = reversed
	s.persistConfig()
}

func (s *Scheduler) adjustUpdateMs(delta int) {
	s.cfg.UpdateMs += delta
	if s.cfg.UpdateMs < updateMsMin {
		s.cfg.UpdateMs = updateMsMin
	}
	if s.cfg.UpdateMs > updateMsMax {
		s.cfg.UpdateMs = updateMsMax
	}
	s.persistConfig()
}

func (s *Scheduler) requestSignal(sig syscall.Signal, label string) {
	pid, ok := s.selectedOrPinnedPID()
	if !ok {
		return
	}
	s.pending = &confirm{label: label, pid: pid, sig: sig}
	s.immediateRedrawPending = true
}

func (s *Scheduler) handleConfirmKey(k int) {
	if k == 'y' || k == 'Y' {
		_ = syscall.Kill(int(s.pending.pid), s.pending.sig)
	}
	s.pending = nil
	s.immediateRedrawPending = true
}

func (s *Scheduler) handleFilterKey(k int) {
	switch k {
	case '\r', '\n':
		s.table.SetFilter(s.filterBuf)
		s.filterInput = false
	case 0x1b:
		s.table.SetFilter(s.filterPrev)
		s.filterInput = false
	case 0x7f, 0x08: // backspace/DEL
		if len(s.filterBuf) > 0 {
			r := []rune(s.filterBuf)
			s.filterBuf = string(r[:len(r)-1])
		}
	default:
		if k >= 0 && k < 256 && unicode.IsPrint(rune(k)) {
			s.filterBuf += string(rune(k))
			s.table.SetFilter(s.filterBuf)
		}
	}
	s.immediateRedrawPending = true
}

// selectedOrPinnedPID returns the pinned PID if one is set, else the
// currently selected row's PID (spec §6: "T/K/I send ... to selected (or
// pinned) PID").
func (s *Scheduler) selectedOrPinnedPID() (int32, bool) {
	if pid, ok := s.table.Pinned(); ok {
		return pid, true
	}
	row, ok := s.table.SelectedRow()
	if !ok {
		return 0, false
	}
	return row.PID, true
}
