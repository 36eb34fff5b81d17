package scheduler

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/errlog"
	"github.com/sysdash/sysdash/pkg/signals"
	"github.com/sysdash/sysdash/pkg/theme"
)

type fakeTerminal struct {
	keys    []byte
	writes  [][]byte
	resize  chan struct{}
	rows    int
	cols    int
}

func newFakeTerminal(rows, cols int) *fakeTerminal {
	return &fakeTerminal{resize: make(chan struct{}, 1), rows: rows, cols: cols}
}

func (f *fakeTerminal) PollKey(timeout time.Duration) (byte, bool) {
	if len(f.keys) == 0 {
		return 0, false
	}
	b := f.keys[0]
	f.keys = f.keys[1:]
	return b, true
}

func (f *fakeTerminal) ResizeCh() <-chan struct{} { return f.resize }
func (f *fakeTerminal) Size() (int, int, error)   { return f.rows, f.cols, nil }
func (f *fakeTerminal) Write(b []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), b...))
	return len(b), nil
}
func (f *fakeTerminal) Clear() {}

func newTestScheduler() *Scheduler {
	cfg := config.Defaults()
	log := errlog.New(io.Discard, false)
	term := newFakeTerminal(30, 100)
	sig := &signals.Handler{}
	return New(term, sig, log, &cfg, theme.Default, 4, "lo")
}

func TestDispatchKeyQuitSetsQuit(t *testing.T) {
	s := newTestScheduler()
	s.dispatchKey('q')
	assert.True(t, s.quit)
}

func TestCycleSortWrapsAroundBothDirections(t *testing.T) {
	s := newTestScheduler()
	s.table.SetSort(config.SortPID, false)

	s.dispatchKey(keyLeft)
	col, _ := s.table.Sort()
	assert.Equal(t, config.SortCPUResponsive, col)

	s.table.SetSort(config.SortCPUResponsive, false)
	s.dispatchKey(keyRight)
	col, _ = s.table.Sort()
	assert.Equal(t, config.SortPID, col)
}

func TestAdjustUpdateMsClampsToBounds(t *testing.T) {
	s := newTestScheduler()
	s.cfg.UpdateMs = updateMsMin
	s.adjustUpdateMs(-updateMsStep)
	assert.Equal(t, updateMsMin, s.cfg.UpdateMs)

	s.cfg.UpdateMs = updateMsMax
	s.adjustUpdateMs(updateMsStep)
	assert.Equal(t, updateMsMax, s.cfg.UpdateMs)
}

func TestFilterInputEditsAndCommitsOnEnter(t *testing.T) {
	s := newTestScheduler()
	s.dispatchKey('f')
	require.True(t, s.filterInput)

	s.dispatchKey('s')
	s.dispatchKey('h')
	assert.Equal(t, "sh", s.filterBuf)

	s.dispatchKey(0x7f)
	assert.Equal(t, "s", s.filterBuf)

	s.dispatchKey('\r')
	assert.False(t, s.filterInput)
	assert.Equal(t, "s", s.table.Filter())
}

func TestFilterInputCancelsOnEscape(t *testing.T) {
	s := newTestScheduler()
	s.table.SetFilter("existing")
	s.dispatchKey('f')
	s.dispatchKey('x')
	s.dispatchKey(0x1b)

	assert.False(t, s.filterInput)
	assert.Equal(t, "existing", s.table.Filter())
}

func TestHandleByteAssemblesArrowEscapeSequence(t *testing.T) {
	s := newTestScheduler()
	s.term.(*fakeTerminal).keys = []byte{'[', 'B'}
	s.handleByte(0x1b)
	assert.NotPanics(t, func() {})
	assert.True(t, s.immediateRedrawPending) // ESC [ B dispatched as keyDown
	assert.Empty(t, s.term.(*fakeTerminal).keys)
}

func TestHandleByteAssemblesNumberedCSIForPgDn(t *testing.T) {
	s := newTestScheduler()
	s.term.(*fakeTerminal).keys = []byte{'[', '6', '~'}
	assert.NotPanics(t, func() {
		s.handleByte(0x1b)
	})
	assert.True(t, s.immediateRedrawPending) // ESC [ 6 ~ dispatched as keyPgDn
	assert.Empty(t, s.term.(*fakeTerminal).keys)
}

func TestRequestSignalThenCancelClearsPending(t *testing.T) {
	s := newTestScheduler()
	s.table.Pin(999999)
	s.dispatchKey('k')
	require.NotNil(t, s.pending)

	s.dispatchKey('n')
	assert.Nil(t, s.pending)
}

func TestHelpToggleOpensAndClosesOnEscape(t *testing.T) {
	s := newTestScheduler()
	s.dispatchKey('H')
	assert.True(t, s.helpVisible)
	s.dispatchKey(0x1b)
	assert.False(t, s.helpVisible)
}

func TestFrameSmokeRendersWithoutPanic(t *testing.T) {
	s := newTestScheduler()
	s.rows, s.cols = 30, 100
	s.resized = true
	s.cfg.UpdateMs = 0

	assert.NotPanics(t, func() {
		s.frame()
	})
	assert.NotEqual(t, 0, s.geom.PROC.Width)
}

func TestApplyGeometryRecreatesCPUPanelOnWidthChange(t *testing.T) {
	s := newTestScheduler()
	s.rows, s.cols = 30, 100
	s.applyGeometry()
	first := s.cpuP

	s.cols = 200
	s.applyGeometry()
	assert.NotSame(t, first, s.cpuP)
}

func TestSelectedOrPinnedPIDPrefersPinned(t *testing.T) {
	s := newTestScheduler()
	s.table.Pin(42)
	pid, ok := s.selectedOrPinnedPID()
	require.True(t, ok)
	assert.Equal(t, int32(42), pid)
}
