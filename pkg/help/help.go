// Package help renders the key-legend overlay (spec §6's Keys list),
// shown full-screen over the rest of the UI while active. It covers what
// the teacher's now-deleted pkg/cheatsheet did conceptually -- a static
// reference screen generated from the program's own keybinding table --
// without reusing any of that package's Docker-specific code.
package help

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/theme"
)

// Entry is one keybinding line.
type Entry struct {
	Keys string
	Desc string
}

// Entries is the full key legend, spec §6 order.
var Entries = []Entry{
	{"Up/Down", "select process"},
	{"Enter", "show/hide detail for selected"},
	{"PgUp/PgDn", "page up/down"},
	{"Home/End", "first/last page"},
	{"Left/Right", "change sort column"},
	{"R", "reverse sort"},
	{"F", "start filter input"},
	{"C", "clear filter"},
	{"T", "send TERM to selected/pinned process"},
	{"K", "send KILL to selected/pinned process"},
	{"I", "send INT to selected/pinned process"},
	{"+/- or A/S", "adjust update interval by 100ms"},
	{"H or F1", "this screen"},
	{"O or F2", "options"},
	{"M or Esc", "close this screen"},
	{"Q", "quit"},
}

// Render draws the legend from rect's top-left corner: a title line, then
// one entry per line from the third line down, stopping at rect.Height.
func Render(rect layout.Rect, th theme.Theme) draw.List {
	var out draw.List
	out.MoveTo(0, 0)
	out.SetFG(th.Title)
	out.PutText("keys")
	out.Reset()

	line := 2
	for _, e := range Entries {
		if line >= rect.Height {
			break
		}
		out.MoveTo(line, 0)
		out.SetFG(th.HiFG)
		out.PutText(fmt.Sprintf("%-12s", e.Keys))
		out.SetFG(th.MainFG)
		out.PutText(e.Desc)
		out.Reset()
		line++
	}
	return out
}
