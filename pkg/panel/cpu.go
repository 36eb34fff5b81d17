// Package panel composes the per-domain panel renderers (spec §4.4): each
// holds its own cached graphs/meters and redraws only what its dirty flags
// require, appending into a panel-scoped draw.List at local (0,0)
// coordinates the scheduler later offsets by the panel's layout.Rect.
package panel

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/chrome"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/graph"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/ring"
	"github.com/sysdash/sysdash/pkg/sampler/cpu"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// CPU renders the CPU panel: a mirrored two-half usage graph (top half
// normal orientation, bottom half inverted, grounded on hi.py's
// cpu_graph_a/cpu_graph_b pair) on the left, and a per-thread meter grid
// on the right whose column count follows layout.MeterColumns.
type CPU struct {
	usage *ring.Ring[float64]

	topRows     []graph.Row
	bottomRows  []graph.Row
	topGraph    graph.Graph
	bottomGraph graph.Graph

	lastRect     layout.Rect
	lastCols     int
	lastNThreads int
}

// NewCPU returns a CPU renderer with an aggregate-usage ring sized to the
// widest graph this panel could need (spec §3: "ring of up to 2*cols").
func NewCPU(cols int) *CPU {
	n := cols * 2
	if n < 1 {
		n = 1
	}
	return &CPU{usage: ring.New[float64](n)}
}

// Render draws the CPU panel. resized forces a full chrome+graph rebuild;
// otherwise only the incremental graph append and the numeric readouts are
// refreshed.
func (c *CPU) Render(rect layout.Rect, snap cpu.Snapshot, th theme.Theme, resized bool) draw.List {
	var out draw.List

	interior := chrome.Interior(rect)
	nthreads := len(snap.Usage) - 1
	if nthreads < 0 {
		nthreads = 0
	}
	showTemps := snap.TempEnabled
	cols := layout.MeterColumns(nthreads, interior.Height, interior.Width)
	colWidth := layout.MeterColumnWidth(showTemps)
	meterBoxWidth := cols * colWidth
	graphWidth := interior.Width - meterBoxWidth - 1
	if graphWidth < 1 {
		graphWidth = 1
	}

	geometryChanged := resized || rect != c.lastRect || cols != c.lastCols || nthreads != c.lastNThreads
	if geometryChanged {
		c.usage.SetCap(utils.Max(graphWidth*2, 1))
	}

	aggregate := 0.0
	if len(snap.Usage) > 0 {
		aggregate = snap.Usage[0]
	}
	c.usage.Push(aggregate)

	if geometryChanged {
		out.Append(chrome.Box(rect, c.title(snap), th.CPUBox, th.Title))

		halfHeight := interior.Height / 2
		c.topGraph = graph.Graph{Width: graphWidth, Height: halfHeight, Ramp: th.CPU}
		c.bottomGraph = graph.Graph{Width: graphWidth, Height: interior.Height - halfHeight, Invert: true, Ramp: th.CPU}

		hist := graph.FromRing(c.usage, 0)
		c.topRows = c.topGraph.Rows(hist)
		c.bottomRows = c.bottomGraph.Rows(hist)

		c.lastRect, c.lastCols, c.lastNThreads = rect, cols, nthreads
	} else {
		hist := graph.FromRing(c.usage, 0)
		c.topRows = c.topGraph.Append(c.topRows, hist, aggregate)
		c.bottomRows = c.bottomGraph.Append(c.bottomRows, hist, aggregate)
	}

	top := c.topGraph.Render(c.topRows)
	offsetRows(&top, interior.Line, interior.Col)
	out.Append(top)

	bottom := c.bottomGraph.Render(c.bottomRows)
	offsetRows(&bottom, interior.Line+c.topGraph.Height, interior.Col)
	out.Append(bottom)

	out.Append(c.renderMeters(interior, snap, th, cols, colWidth, graphWidth+1, showTemps))
	return out
}

func (c *CPU) title(snap cpu.Snapshot) string {
	if snap.Name == "" {
		return fmt.Sprintf("cpu %s", utils.FormatFreq(snap.FreqMHz))
	}
	return fmt.Sprintf("cpu %s %s", snap.Name, utils.FormatFreq(snap.FreqMHz))
}

func (c *CPU) renderMeters(interior layout.Rect, snap cpu.Snapshot, th theme.Theme, cols, colWidth, startCol int, showTemps bool) draw.List {
	var out draw.List
	nthreads := len(snap.Usage) - 1
	if nthreads <= 0 {
		return out
	}
	perCol := (nthreads + cols - 1) / cols
	if perCol < 1 {
		perCol = 1
	}

	meterWidth := colWidth - 10
	if showTemps {
		meterWidth = colWidth - 18
	}
	if meterWidth < 4 {
		meterWidth = 4
	}

	for i := 1; i <= nthreads; i++ {
		col := (i - 1) / perCol
		row := (i - 1) % perCol
		if row >= interior.Height {
			continue
		}
		line := interior.Line + row
		base := interior.Col + startCol + col*colWidth

		out.MoveTo(line, base)
		out.SetFG(th.MainFG)
		out.PutText(fmt.Sprintf("%-2d", i-1))

		pct := int(snap.Usage[i])
		meter := graph.Meter(meterWidth, pct, th.CPU, false, false, th.InactiveFG)
		offsetRows(&meter, line, base+3)
		out.Append(meter)

		out.MoveTo(line, base+3+meterWidth+1)
		out.SetFG(th.MainFG)
		out.PutText(fmt.Sprintf("%3d%%", pct))

		if showTemps && i < len(snap.Temps) {
			out.MoveTo(line, base+3+meterWidth+6)
			out.SetFG(th.Temp.At(int(snap.Temps[i])))
			out.PutText(fmt.Sprintf("%3.0f°", snap.Temps[i]))
		}
	}
	out.Reset()
	return out
}

// offsetRows shifts every MoveTo command in list by (dLine, dCol), used to
// place a sub-component's local (0,0)-anchored list at its position within
// a panel's interior.
func offsetRows(list *draw.List, dLine, dCol int) {
	for i := range *list {
		if (*list)[i].Op == draw.OpMoveTo {
			(*list)[i].Line += dLine
			(*list)[i].Col += dCol
		}
	}
}
