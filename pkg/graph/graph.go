package graph

import (
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/theme"
)

// normalGlyphs and invertedGlyphs are the two fixed 11-symbol braille
// alphabets (spec §4.2), taken verbatim from the graph_symbol table in the
// original "hi" implementation. Index 0 is an empty cell, index 10 a full
// one; 1..9 are the intermediate tenth-of-a-row steps.
var normalGlyphs = [11]string{" ", "⡀", "⣀", "⣄", "⣤", "⣦", "⣴", "⣶", "⣷", "⣾", "⣿"}
var invertedGlyphs = [11]string{" ", "⣿", "⢿", "⡿", "⠿", "⠻", "⠟", "⠛", "⠙", "⠉", "⠈"}

// Graph renders a width×height history box from a fixed ramp and geometry.
type Graph struct {
	Width, Height int
	Invert        bool
	Ramp          theme.Ramp
}

func (g Graph) glyphs() [11]string {
	if g.Invert {
		return invertedGlyphs
	}
	return normalGlyphs
}

func (g Graph) normHeight() int {
	if g.Height < 1 {
		return 1
	}
	return g.Height
}

// normalize maps hist.Values to 0-100 using hist.Max when set.
func normalize(hist History) []float64 {
	if hist.Max <= 0 {
		return hist.Values
	}
	out := make([]float64, len(hist.Values))
	for i, v := range hist.Values {
		if v >= hist.Max {
			out[i] = 100
			continue
		}
		out[i] = v * 100 / hist.Max
	}
	return out
}

// Cell is one column's glyph on one row, holding the glyph string and its
// fill percentage (Pct, 0-100 in steps of 10) so runs of identical
// color/glyph can be coalesced when the row is drawn.
type Cell struct {
	Glyph string
	Pct   int
}

// Row is one horizontal line of a graph, one Cell per history column.
type Row []Cell

// cellFor computes the glyph for a single value on row y, following
// §4.2's formula: virtual height = height*10, glyph at line y chosen by
// v*virtual_height/100 - next_line_value.
func (g Graph) cellFor(v float64, y int) Cell {
	virtualHeight := g.normHeight() * 10
	curValue := virtualHeight - y*10
	nextValue := virtualHeight - (y+1)*10
	glyphs := g.glyphs()

	scaled := int(v) * virtualHeight / 100
	switch {
	case scaled <= nextValue:
		return Cell{Glyph: glyphs[0], Pct: 0}
	case scaled >= curValue:
		return Cell{Glyph: glyphs[10], Pct: 100}
	default:
		idx := scaled - nextValue
		return Cell{Glyph: glyphs[idx], Pct: idx * 10}
	}
}

// Rows builds the full width*height cell grid from scratch (the "resized"
// dirty path, spec §4.4), right-justifying when fewer history values exist
// than Width.
func (g Graph) Rows(hist History) []Row {
	height := g.normHeight()
	width := g.Width
	if width < 1 {
		width = 1
	}

	values := normalize(hist)
	if len(values) > width {
		values = values[len(values)-width:]
	}
	pad := width - len(values)

	rows := make([]Row, height)
	for y := 0; y < height; y++ {
		row := make(Row, 0, width)
		for i := 0; i < pad; i++ {
			row = append(row, Cell{Glyph: " ", Pct: 0})
		}
		for _, v := range values {
			row = append(row, g.cellFor(v, y))
		}
		rows[y] = row
	}
	return rows
}

// Append drops the oldest column from each row and appends the column for
// newValue, implementing the "add last value" incremental mode (spec
// §4.2) directly on the cached row representation a panel renderer holds
// between frames, rather than re-parsing escape sequences.
func (g Graph) Append(rows []Row, hist History, newValue float64) []Row {
	v := newValue
	if hist.Max > 0 {
		if v >= hist.Max {
			v = 100
		} else {
			v = v * 100 / hist.Max
		}
	}

	out := make([]Row, len(rows))
	for y, row := range rows {
		next := make(Row, 0, len(row))
		if len(row) > 0 {
			next = append(next, row[1:]...)
		}
		next = append(next, g.cellFor(v, y))
		out[y] = next
	}
	return out
}

// Render converts a cell grid into a positioned draw list, coalescing runs
// of identical glyph+color into single Repeat commands (Rows + Render is
// the "resized" path; Append + Render is the incremental path, spec §4.4).
func (g Graph) Render(rows []Row) draw.List {
	var out draw.List
	for y, row := range rows {
		out.MoveTo(y, 0)
		runGlyph := ""
		runPct := -1
		runLen := 0
		flushColor := func(pct int) {
			out.SetFG(g.Ramp.At(pct))
		}
		for _, c := range row {
			if c.Glyph == runGlyph && c.Pct == runPct {
				runLen++
				continue
			}
			if runLen > 0 {
				out.Repeat(runGlyph, runLen)
			}
			flushColor(c.Pct)
			runGlyph, runPct, runLen = c.Glyph, c.Pct, 1
		}
		if runLen > 0 {
			out.Repeat(runGlyph, runLen)
		}
	}
	out.Reset()
	return out
}

// Mini renders the one-row variant used by the process table (spec §4.2):
// each value is represented by the single braille symbol closest to its
// rounded tenth, with an optional no-color ramp.
func Mini(values []float64, width int, ramp *theme.Ramp) draw.List {
	if width < 1 {
		width = 1
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	pad := width - len(values)

	var out draw.List
	out.MoveTo(0, 0)
	if pad > 0 {
		out.Repeat(" ", pad)
	}
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v/10 + 0.5)
		if idx > 10 {
			idx = 10
		}
		if ramp != nil {
			out.SetFG(ramp.At(int(v)))
		}
		out.PutText(normalGlyphs[idx])
	}
	out.Reset()
	return out
}
