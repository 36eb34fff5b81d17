package panel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/proctable"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
	"github.com/sysdash/sysdash/pkg/theme"
)

func TestProcRenderShowsHeaderRowsAndFooter(t *testing.T) {
	tbl := proctable.New()
	tbl.SetPageHeight(10)
	tbl.SetSort(config.SortPID, false)
	tbl.SetRows([]proc.Row{
		{PID: 1, Name: "init", User: "root", MemPct: 0.1, CPUPct: 1},
		{PID: 900, Name: "chrome", User: "alice", MemPct: 9, CPUPct: 40},
	}, false)

	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 80}
	rendered := draw.Render(Proc{}.Render(rect, tbl, theme.Default, ProcOverlay{}), 0, 0)

	assert.Contains(t, rendered, "pid")
	assert.Contains(t, rendered, "chrome")
	assert.Contains(t, rendered, "1/1")
}

func TestProcRenderEchoesFilterBuffer(t *testing.T) {
	tbl := proctable.New()
	tbl.SetPageHeight(10)
	tbl.SetRows([]proc.Row{{PID: 1, Name: "init"}}, false)

	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 80}
	rendered := draw.Render(Proc{}.Render(rect, tbl, theme.Default, ProcOverlay{FilterActive: true, FilterBuf: "chro"}), 0, 0)

	assert.Contains(t, rendered, "filter:")
	assert.Contains(t, rendered, "chro")
}

func TestProcRenderDrawsConfirmDialog(t *testing.T) {
	tbl := proctable.New()
	tbl.SetPageHeight(10)
	tbl.SetRows([]proc.Row{{PID: 42, Name: "init"}}, false)

	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 80}
	overlay := ProcOverlay{ConfirmActive: true, ConfirmLabel: "KILL", ConfirmPID: 42}
	rendered := draw.Render(Proc{}.Render(rect, tbl, theme.Default, overlay), 0, 0)

	assert.Contains(t, rendered, "confirm")
	assert.Contains(t, rendered, "KILL")
	assert.Contains(t, rendered, "42")
}

func TestProcRenderDrawsUpToHeightMinusThreeRows(t *testing.T) {
	tbl := proctable.New()
	tbl.SetPageHeight(7) // rect.Height=10 -> height-3
	tbl.SetSort(config.SortPID, false)
	rows := make([]proc.Row, 0, 9)
	for i := int32(1); i <= 9; i++ {
		rows = append(rows, proc.Row{PID: i, Name: "p"})
	}
	tbl.SetRows(rows, false)

	rect := layout.Rect{Line: 0, Col: 0, Height: 10, Width: 80}
	rendered := draw.Render(Proc{}.Render(rect, tbl, theme.Default, ProcOverlay{}), 0, 0)

	for i := int32(1); i <= 7; i++ {
		assert.Contains(t, rendered, fmt.Sprintf("%5d", i))
	}
	assert.NotContains(t, rendered, fmt.Sprintf("%5d", int32(8)))
}

func TestProcRenderDrawsMicroGraphForActivePID(t *testing.T) {
	tbl := proctable.New()
	tbl.SetPageHeight(10)
	tbl.SetRows([]proc.Row{{PID: 900, Name: "chrome", CPUPct: 40}}, false)

	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 80}
	assert.NotPanics(t, func() {
		Proc{}.Render(rect, tbl, theme.Default, ProcOverlay{})
	})
}

func TestRowFGReturnsMainFGAtSelection(t *testing.T) {
	fg := rowFG(theme.Default, 2, 2, 5)
	assert.Equal(t, theme.Default.MainFG, fg)
}
