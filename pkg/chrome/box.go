// Package chrome draws the single-line panel borders and titles shared by
// every panel renderer, grounded on create_box in the original "hi"
// implementation (original_source/hi.py): corners, horizontal/vertical
// runs, and an inline "┤ title ├" break in the top border rather than a
// full titlebar row.
package chrome

import (
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/theme"
)

// Box draws a single-line border around r, with an optional title embedded
// in the top border starting at column 2, matching create_box's "-t" form
// (a titled box without a full titlebar).
func Box(r layout.Rect, title string, lineColor theme.RGB, titleColor theme.RGB) draw.List {
	var out draw.List
	if r.Width < 2 || r.Height < 2 {
		return out
	}

	out.SetFG(lineColor)
	out.MoveTo(0, 0)
	out.Repeat("─", r.Width)
	out.MoveTo(r.Height-1, 0)
	out.Repeat("─", r.Width)

	for y := 0; y < r.Height; y++ {
		out.MoveTo(y, 0)
		out.PutText("│")
		out.MoveTo(y, r.Width-1)
		out.PutText("│")
	}

	out.MoveTo(0, 0)
	out.PutText("┌")
	out.MoveTo(0, r.Width-1)
	out.PutText("┐")
	out.MoveTo(r.Height-1, 0)
	out.PutText("└")
	out.MoveTo(r.Height-1, r.Width-1)
	out.PutText("┘")

	if title != "" && r.Width > len(title)+6 {
		out.MoveTo(0, 2)
		out.SetFG(lineColor)
		out.PutText("┤ ")
		out.SetFG(titleColor)
		out.PutText(title)
		out.SetFG(lineColor)
		out.PutText(" ├")
	}

	out.Reset()
	return out
}

// Interior returns the drawable area inside a bordered box: r inset by one
// cell on every side.
func Interior(r layout.Rect) layout.Rect {
	if r.Width <= 2 || r.Height <= 2 {
		return layout.Rect{Line: r.Line + 1, Col: r.Col + 1}
	}
	return layout.Rect{Line: r.Line + 1, Col: r.Col + 1, Height: r.Height - 2, Width: r.Width - 2}
}
