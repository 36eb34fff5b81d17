package panel

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/chrome"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/graph"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/proctable"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

const microGraphCells = 5

// Proc renders the process table panel: header, row band with a
// selection-centered foreground gradient, a rightmost micro-graph column
// for recently active PIDs, a page indicator, and a static key legend
// (spec §4.4's process panel paragraph).
type Proc struct{}

// ProcOverlay carries the scheduler's transient input state (spec §6's
// filter entry and T/K/I confirmation) that the process panel must echo
// on screen while active.
type ProcOverlay struct {
	FilterActive  bool
	FilterBuf     string
	ConfirmActive bool
	ConfirmLabel  string // "TERM", "KILL", or "INT"
	ConfirmPID    int32
}

// Render draws the full process panel. It takes no sort/filter/page dirty
// flags; this renderer always redraws the header+row band in full since the row band
// itself is cheap relative to the graph panels, and a partial
// selection-only repaint buys little here.
func (p Proc) Render(rect layout.Rect, tbl *proctable.Table, th theme.Theme, overlay ProcOverlay) draw.List {
	var out draw.List
	out.Append(chrome.Box(rect, "proc", th.ProcBox, th.Title))
	interior := chrome.Interior(rect)

	nameW := utils.Max(interior.Width-40, 8)
	header := fmt.Sprintf("%5s %-*s %5s %6s %6s", "pid", nameW, "name", "user", "mem%", "cpu%")
	out.MoveTo(interior.Line, interior.Col)
	out.SetFG(th.Title)
	out.PutText(utils.WithPadding(header, interior.Width))

	rows := tbl.VisibleRows()
	selected := tbl.Selected()
	// Header takes interior row 0; the page indicator and legend are drawn
	// on the box's bottom border line (below), the same way chrome.Box
	// overlays the panel title on the top border, so the full remaining
	// interior is available for data rows: height-3 overall (spec §4.4,
	// §8's rows_on_page = height-3).
	rowsAvailable := interior.Height - 1
	if rowsAvailable < 0 {
		rowsAvailable = 0
	}

	for i, r := range rows {
		if i >= rowsAvailable {
			break
		}
		line := interior.Line + 1 + i
		fg := rowFG(th, i, selected, len(rows))

		out.MoveTo(line, interior.Col)
		if i == selected {
			out.SetBG(th.SelectedBG)
			out.SetFG(th.SelectedFG)
		} else {
			out.SetFG(fg)
		}
		text := fmt.Sprintf("%5d %-*s %5s %5.1f%% %5.1f%%", r.PID, nameW, utils.SafeTruncate(r.Name, nameW), r.User, r.MemPct, r.CPUPct)
		out.PutText(utils.WithPadding(text, interior.Width-microGraphCells-1))

		if hist, ok := tbl.MicroGraph(r.PID); ok {
			mini := graph.Mini(hist, microGraphCells, &th.CPU)
			offsetRows(&mini, line, interior.Col+interior.Width-microGraphCells)
			out.Append(mini)
		}
		out.Reset()
	}

	page, pages := tbl.Page()
	footer := fmt.Sprintf("%d/%d", page, pages)
	borderLine := interior.Line + interior.Height
	out.MoveTo(borderLine, interior.Col)
	out.SetFG(th.ProcMisc)
	out.PutText(footer)

	if overlay.FilterActive {
		prompt := utils.ColoredString("filter:", utils.GetColorAttribute("cyan"))
		line := fmt.Sprintf("%s %s_", prompt, overlay.FilterBuf)
		out.MoveTo(borderLine, interior.Col+len(footer)+1)
		out.SetFG(th.MainFG)
		out.PutText(utils.WithPadding(line, interior.Width-len(footer)-1))
	} else {
		legend := "Enter:detail F:filter C:clear R:reverse T:term K:kill I:int"
		if interior.Width > len(footer)+len(legend)+2 {
			out.MoveTo(borderLine, interior.Col+interior.Width-len(legend))
			out.SetFG(th.InactiveFG)
			out.PutText(legend)
		}
	}

	out.Reset()

	if overlay.ConfirmActive {
		out.Append(confirmDialog(rect, overlay, th))
	}
	return out
}

// confirmDialog draws the T/K/I signal confirmation (spec §6) as a small
// box centered over the process panel, the label colored by severity via
// fatih/color (red for KILL, yellow for TERM, cyan for INT) the way the
// teacher colors container states in pkg/gui/presentation. It draws its
// own 3-line box centered inside rect, in the same absolute coordinates
// Render uses for the outer panel, so it composes into the same draw.List.
func confirmDialog(rect layout.Rect, overlay ProcOverlay, th theme.Theme) draw.List {
	var out draw.List

	plain := fmt.Sprintf("send %s to pid %d? (y/n)", overlay.ConfirmLabel, overlay.ConfirmPID)
	width := utils.Clamp(len(plain)+4, 24, rect.Width-2)
	height := 3
	if width > rect.Width || height > rect.Height {
		return out
	}
	box := layout.Rect{
		Line:   rect.Line + (rect.Height-height)/2,
		Col:    rect.Col + (rect.Width-width)/2,
		Height: height,
		Width:  width,
	}

	out.Append(chrome.Box(box, "confirm", th.ProcBox, th.Title))
	interior := chrome.Interior(box)

	label := utils.ColoredString(overlay.ConfirmLabel, utils.GetColorAttribute(confirmColorName(overlay.ConfirmLabel)))
	line := fmt.Sprintf("send %s to pid %d? (y/n)", label, overlay.ConfirmPID)
	out.MoveTo(interior.Line, interior.Col)
	out.SetFG(th.MainFG)
	out.PutText(line)
	out.Reset()
	return out
}

func confirmColorName(label string) string {
	switch label {
	case "KILL":
		return "red"
	case "TERM":
		return "yellow"
	default:
		return "cyan"
	}
}

// rowFG fades the foreground linearly away from the selected row (spec
// §4.4's row gradient), using InactiveFG as the far end of the fade and
// MainFG at the selected row itself.
func rowFG(th theme.Theme, i, selected, nrows int) theme.RGB {
	if nrows <= 1 {
		return th.MainFG
	}
	dist := i - selected
	if dist < 0 {
		dist = -dist
	}
	maxDist := utils.Max(selected, nrows-1-selected)
	if maxDist == 0 {
		return th.MainFG
	}
	t := float64(dist) / float64(maxDist)
	return lerpRGB(th.MainFG, th.InactiveFG, t)
}

func lerpRGB(a, b theme.RGB, t float64) theme.RGB {
	f := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return theme.RGB{R: f(a.R, b.R), G: f(a.G, b.G), B: f(a.B, b.B)}
}
