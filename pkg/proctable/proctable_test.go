package proctable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
)

func sampleRows() []proc.Row {
	return []proc.Row{
		{PID: 1, Name: "init", NThreads: 1, User: "root", MemPct: 0.1, CPUPct: 0.0},
		{PID: 50, Name: "bash", ArgvTail: "", NThreads: 1, User: "alice", MemPct: 0.3, CPUPct: 2.5},
		{PID: 12, Name: "sshd", ArgvTail: "-D", NThreads: 2, User: "root", MemPct: 0.2, CPUPct: 1.0},
		{PID: 900, Name: "chrome", ArgvTail: "--type=renderer", NThreads: 30, User: "alice", MemPct: 9.5, CPUPct: 40.0},
	}
}

func TestSetRowsSortsByDefaultColumn(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	rows := tbl.VisibleRows()
	assert.Equal(t, []int32{1, 12, 50, 900}, pids(rows))
}

func TestSortReversed(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetRows(sampleRows(), false)
	tbl.SetSort(config.SortMemory, true)

	rows := tbl.VisibleRows()
	assert.Equal(t, []int32{900, 50, 12, 1}, pids(rows))
}

func TestFilterNarrowsVisibleRows(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	tbl.SetFilter("sh")
	rows := tbl.VisibleRows()
	assert.Equal(t, []int32{12, 50}, pids(rows)) // "sshd" and "bash" both contain "sh", sorted by pid

	tbl.SetFilter("")
	assert.Len(t, tbl.VisibleRows(), 4)
}

func TestPaginationSplitsAcrossPages(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(2)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	page, pages := tbl.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 2, pages)
	assert.Equal(t, []int32{1, 12}, pids(tbl.VisibleRows()))

	tbl.PageDown()
	page, _ = tbl.Page()
	assert.Equal(t, 2, page)
	assert.Equal(t, []int32{50, 900}, pids(tbl.VisibleRows()))

	tbl.PageDown() // should clamp at the last page
	page, _ = tbl.Page()
	assert.Equal(t, 2, page)
}

func TestMoveSelectionCrossesPageBoundary(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(2)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	tbl.MoveSelection(1) // row index 1 on page 1 (pid 12)
	row, ok := tbl.SelectedRow()
	assert.True(t, ok)
	assert.EqualValues(t, 12, row.PID)

	tbl.MoveSelection(1) // crosses onto page 2, offset 0 (pid 50)
	page, _ := tbl.Page()
	assert.Equal(t, 2, page)
	row, ok = tbl.SelectedRow()
	assert.True(t, ok)
	assert.EqualValues(t, 50, row.PID)

	tbl.MoveSelection(-1) // back onto page 1, offset 1 (pid 12)
	page, _ = tbl.Page()
	assert.Equal(t, 1, page)
	row, ok = tbl.SelectedRow()
	assert.True(t, ok)
	assert.EqualValues(t, 12, row.PID)
}

func TestSelectedNeverExceedsRowsOnPage(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(3)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	tbl.End() // last page has 1 row (pid 900), rows_on_page - 1 == 0
	assert.Equal(t, 0, tbl.Selected())
	tbl.MoveSelection(5)
	assert.Equal(t, 0, tbl.Selected())
}

func TestPinSurvivesFilteringOut(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows(sampleRows(), false)

	tbl.Pin(50) // "bash"
	tbl.SetFilter("chrome")

	assert.NotContains(t, pids(tbl.VisibleRows()), int32(50))
	row, ok := tbl.PinnedRow()
	assert.True(t, ok)
	assert.EqualValues(t, 50, row.PID)
}

func TestTogglePinUnpinsSamePID(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetRows(sampleRows(), false)

	tbl.TogglePin(12)
	pid, ok := tbl.Pinned()
	assert.True(t, ok)
	assert.EqualValues(t, 12, pid)

	tbl.TogglePin(12)
	_, ok = tbl.Pinned()
	assert.False(t, ok)
}

func TestDetailedKilledReflectsSecondaryReadFailure(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetRows(sampleRows(), false)
	tbl.Pin(12)

	tbl.SetRows([]proc.Row{{PID: 1, Name: "init"}}, true)
	assert.True(t, tbl.DetailedKilled())
	_, ok := tbl.PinnedRow()
	assert.False(t, ok)
}

func TestPagesFloorsAtOneForEmptySample(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetRows(nil, false)

	page, pages := tbl.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, pages)
}

func TestMicroGraphLiveWhileActiveThenExpires(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)

	row := []proc.Row{{PID: 900, Name: "chrome", CPUPct: 40}}
	tbl.SetRows(row, false)

	hist, ok := tbl.MicroGraph(900)
	require.True(t, ok)
	assert.Equal(t, []float64{40}, hist)

	idle := []proc.Row{{PID: 900, Name: "chrome", CPUPct: 0}}
	for i := 0; i < microGraphTTL; i++ {
		tbl.SetRows(idle, false)
	}
	_, ok = tbl.MicroGraph(900)
	assert.False(t, ok)
}

func TestMicroGraphDroppedWhenPIDDisappears(t *testing.T) {
	tbl := New()
	tbl.SetPageHeight(10)
	tbl.SetRows([]proc.Row{{PID: 900, CPUPct: 10}}, false)
	tbl.SetRows([]proc.Row{{PID: 1, CPUPct: 0}}, false)

	_, ok := tbl.MicroGraph(900)
	assert.False(t, ok)
}

func pids(rows []proc.Row) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.PID
	}
	return out
}
