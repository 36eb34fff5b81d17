package panel

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/chrome"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/graph"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/sampler/mem"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// Mem renders the memory/swap/disk panel. Unlike CPU and NET it carries no
// history graph of its own (spec §3 lists no MEM ring; "Detail memory" is
// the process detail pane's ring, not this panel's), so every frame is a
// plain redraw of meters and byte counts rather than an incremental graph
// append.
type Mem struct {
	lastRect layout.Rect
}

// Render draws the MEM panel from the latest snapshot, in full on every
// call. The scheduler calls it every frame, including frames where the
// sampler returns its cached snapshot; the call is not gated on
// mem_counter or resize.
func (m *Mem) Render(rect layout.Rect, snap mem.Snapshot, th theme.Theme) draw.List {
	var out draw.List
	interior := chrome.Interior(rect)
	out.Append(chrome.Box(rect, "mem", th.MemBox, th.Title))
	m.lastRect = rect

	meterWidth := interior.Width - 28
	if meterWidth < 4 {
		meterWidth = 4
	}

	line := interior.Line
	type row struct {
		label string
		pct   float64
		ramp  theme.Ramp
	}
	rows := []row{
		{"used", snap.UsedPct, th.Used},
		{"available", snap.AvailablePct, th.Available},
		{"cached", snap.CachedPct, th.Cached},
		{"free", snap.FreePct, th.Free},
	}
	if snap.SwapTotalBytes > 0 {
		rows = append(rows, row{"swap", snap.SwapUsedPct, th.Used})
	}

	for _, r := range rows {
		if line >= interior.Line+interior.Height {
			break
		}
		out.MoveTo(line, interior.Col)
		out.SetFG(th.MainFG)
		out.PutText(utils.WithPadding(r.label, 10))

		meterList := graph.Meter(meterWidth, int(r.pct), r.ramp, false, false, th.InactiveFG)
		offsetRows(&meterList, line, interior.Col+10)
		out.Append(meterList)

		out.MoveTo(line, interior.Col+10+meterWidth+1)
		out.SetFG(th.MainFG)
		out.PutText(fmt.Sprintf("%5.1f%%", r.pct))
		line++
	}

	line++ // blank separator before disks
	for _, d := range snap.Disks {
		if line >= interior.Line+interior.Height {
			break
		}
		out.MoveTo(line, interior.Col)
		out.SetFG(th.MainFG)
		out.PutText(utils.WithPadding(d.Name, 10))

		meterList := graph.Meter(meterWidth, int(d.UsedPct), th.Used, false, false, th.InactiveFG)
		offsetRows(&meterList, line, interior.Col+10)
		out.Append(meterList)

		out.MoveTo(line, interior.Col+10+meterWidth+1)
		out.SetFG(th.MainFG)
		out.PutText(fmt.Sprintf("%s/%s", utils.FormatBinaryBytes(int64(d.Used)), utils.FormatBinaryBytes(int64(d.Total))))
		line++
	}

	out.Reset()
	return out
}
