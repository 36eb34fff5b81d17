package panel

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/chrome"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/graph"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/ring"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// Detail renders the pinned-process detail pane reserved at the top of
// the PROC panel (spec §4.3's "detail pane" paragraph): a CPU history
// graph on the left, and status/elapsed/parent/command/memory text on the
// right.
type Detail struct {
	cpuHist *ring.Ring[float64]
	memHist *ring.Ring[float64]

	lastRect layout.Rect
	cpuGraph graph.Graph
	cpuRows  []graph.Row
}

// NewDetail returns a Detail renderer with CPU/mem rings sized for the
// widest detail graph this pane could need (spec §3: "ring of up to
// 2*detail_cols" for cpu, "detail_cols" for memory).
func NewDetail(cols int) *Detail {
	cpuCap := cols * 2
	if cpuCap < 1 {
		cpuCap = 1
	}
	memCap := cols
	if memCap < 1 {
		memCap = 1
	}
	return &Detail{cpuHist: ring.New[float64](cpuCap), memHist: ring.New[float64](memCap)}
}

// Render draws the detail pane for row, or a "pid N no longer running" line
// if killed is true (the pinned PID vanished from /proc; spec §3's
// detailed_killed flag).
func (d *Detail) Render(rect layout.Rect, row proc.Row, killed bool, th theme.Theme, resized bool) draw.List {
	var out draw.List
	out.Append(chrome.Box(rect, fmt.Sprintf("detail: %d", row.PID), th.ProcBox, th.Title))
	interior := chrome.Interior(rect)

	if killed {
		out.MoveTo(interior.Line, interior.Col)
		out.SetFG(th.InactiveFG)
		out.PutText(fmt.Sprintf("pid %d no longer running", row.PID))
		out.Reset()
		return out
	}

	d.cpuHist.Push(row.CPUPct)
	memW, infoRect := layout.DetailSplit(interior)

	geometryChanged := resized || rect != d.lastRect
	if geometryChanged {
		d.cpuHist.SetCap(maxInt(memW.Width*2, 1))
		d.cpuGraph = graph.Graph{Width: memW.Width, Height: memW.Height, Ramp: th.CPU}
		d.cpuRows = d.cpuGraph.Rows(graph.FromRing(d.cpuHist, 0))
		d.lastRect = rect
	} else {
		d.cpuRows = d.cpuGraph.Append(d.cpuRows, graph.FromRing(d.cpuHist, 0), row.CPUPct)
	}
	cpuList := d.cpuGraph.Render(d.cpuRows)
	offsetRows(&cpuList, memW.Line, memW.Col)
	out.Append(cpuList)

	line := infoRect.Line
	out.MoveTo(line, infoRect.Col)
	out.SetFG(th.MainFG)
	out.PutText(fmt.Sprintf("%s  elapsed %s  parent %d  [%s] [%d threads]",
		row.Status, formatElapsed(row.ElapsedSec), row.ParentPID, row.User, row.NThreads))
	line++

	cmd := row.Name
	if row.ArgvTail != "" {
		cmd += " " + row.ArgvTail
	}
	for _, wrapped := range wrapText(cmd, infoRect.Width, 3) {
		if line >= infoRect.Line+infoRect.Height {
			break
		}
		out.MoveTo(line, infoRect.Col)
		out.SetFG(th.InactiveFG)
		out.PutText(wrapped)
		line++
	}

	d.memHist.Push(float64(row.MemPct))
	if line < infoRect.Line+infoRect.Height {
		out.MoveTo(line, infoRect.Col)
		out.SetFG(th.MainFG)
		out.PutText(fmt.Sprintf("mem %5.1f%% ", row.MemPct))
		mini := graph.Mini(d.memHist.Values(), maxInt(infoRect.Width-10, 1), &th.Used)
		offsetRows(&mini, line, infoRect.Col+10)
		out.Append(mini)
		line++
	}

	if line < infoRect.Line+infoRect.Height {
		out.MoveTo(line, infoRect.Col)
		out.SetFG(th.InactiveFG)
		out.PutText(fmt.Sprintf("rss %s", utils.FormatDecimalBytes(int64(row.RSSBytes))))
	}

	out.Reset()
	return out
}

func formatElapsed(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	h := int(sec) / 3600
	m := (int(sec) % 3600) / 60
	s := int(sec) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// wrapText splits s into lines of at most width runes, stopping after
// maxLines (spec §4.3's "command-line wrap (1-3 lines)").
func wrapText(s string, width, maxLines int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	r := []rune(s)
	for len(r) > 0 && len(lines) < maxLines {
		n := width
		if n > len(r) {
			n = len(r)
		}
		lines = append(lines, string(r[:n]))
		r = r[n:]
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
