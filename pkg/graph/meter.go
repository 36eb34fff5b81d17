// Package graph renders the braille history graphs and percentage meters
// used by every panel (spec §4.2). Both are grounded on the create_meter and
// create_graph shell functions in the original "hi" implementation
// (original_source/hi.py), re-expressed as pure functions over a
// draw.List instead of string concatenation.
package graph

import (
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/ring"
	"github.com/sysdash/sysdash/pkg/theme"
)

const meterBlock = "■"

// Meter renders a single-line horizontal percentage meter of the given
// width. val is clamped to [0,100]. When fillEmpty is true, unused columns
// are filled with the inactive-fg block instead of left blank (the "-f"
// create_meter flag). When invert is true, the meter fills right to left.
func Meter(width, val int, ramp theme.Ramp, fillEmpty, invert bool, bgColor theme.RGB) draw.List {
	if width < 1 {
		width = 1
	}
	if val < 0 {
		val = 0
	}
	if val > 100 {
		val = 100
	}

	var out draw.List
	out.MoveTo(0, 0)

	filled := make([]bool, width)
	for i := 1; i <= width; i++ {
		if val >= i*100/width {
			filled[i-1] = true
		}
	}

	col := func(i int) int {
		if invert {
			return width - 1 - i
		}
		return i
	}

	emptyRun := 0
	flushEmpty := func() {
		if emptyRun > 0 {
			out.Repeat(" ", emptyRun)
			emptyRun = 0
		}
	}

	for i := 0; i < width; i++ {
		idx := col(i)
		if filled[idx] {
			flushEmpty()
			pct := (idx + 1) * 100 / width
			out.SetFG(ramp.At(pct))
			out.PutText(meterBlock)
			continue
		}
		if fillEmpty {
			flushEmpty()
			out.SetFG(bgColor)
			out.PutText(meterBlock)
			continue
		}
		emptyRun++
	}
	flushEmpty()
	out.Reset()
	return out
}

// GreyscaleRamp builds the fallback meter/graph ramp used when no named
// color ramp is configured for a value (create_meter's greyscale default:
// 50..250 in steps of 2 across the 0-100 index).
func GreyscaleRamp() theme.Ramp {
	var r theme.Ramp
	for i := 0; i <= 100; i++ {
		v := uint8(50 + i*2)
		r[i] = theme.RGB{R: v, G: v, B: v}
	}
	return r
}

// History is the read-only view a Graph needs of a sample ring: its values
// in chronological order and an optional max for non-percentage series
// (network bytes/sec, where 100% is an auto-scaled ceiling rather than a
// fixed 100).
type History struct {
	Values []float64
	Max    float64 // 0 means values are already 0-100 percentages
}

func FromRing(r *ring.Ring[float64], max float64) History {
	return History{Values: r.Values(), Max: max}
}
