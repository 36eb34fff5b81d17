// Package layout computes panel geometry from a terminal's row/column
// count (spec §4.3). It is pure: given R, C and a few panel-dependent
// inputs (thread count, whether temperatures are shown, whether a process
// is pinned), it returns the rectangles every renderer draws into.
package layout

// MinRows and MinCols are the minimum supported terminal size; below this
// the scheduler blocks with an on-screen prompt until a valid resize
// arrives instead of computing a layout.
const (
	MinRows = 25
	MinCols = 80
)

// Rect is a panel's origin and extent in terminal cells, 0-indexed.
type Rect struct {
	Line, Col, Height, Width int
}

// Geometry is the full top-level split for one frame.
type Geometry struct {
	CPU, MEM, NET, PROC Rect
	Detail              Rect // zero value when no process is pinned
}

// Fits reports whether a terminal of the given size can be laid out at
// all (spec §4.3's 80x25 floor).
func Fits(rows, cols int) bool {
	return rows >= MinRows && cols >= MinCols
}

// Compute builds the top-level geometry for a terminal of rows x cols.
// pinnedDetail reserves the 8-line detail pane at the top of PROC when a
// process is pinned.
func Compute(rows, cols int, pinnedDetail bool) Geometry {
	cpuH, memH, netH := splitVertical(rows)

	netW := cols * 45 / 100
	if netW < 1 {
		netW = 1
	}
	procW := cols - netW

	lowerLine := cpuH
	net := Rect{Line: lowerLine + memH, Col: 0, Height: netH, Width: netW}
	mem := Rect{Line: lowerLine, Col: 0, Height: memH, Width: netW}
	proc := Rect{Line: lowerLine, Col: netW, Height: memH + netH, Width: procW}
	cpu := Rect{Line: 0, Col: 0, Height: cpuH, Width: cols}

	var detail Rect
	if pinnedDetail && proc.Height > detailHeight {
		detail = Rect{Line: proc.Line, Col: proc.Col, Height: detailHeight, Width: proc.Width}
		proc.Line += detailHeight
		proc.Height -= detailHeight
	}

	return Geometry{CPU: cpu, MEM: mem, NET: net, PROC: proc, Detail: detail}
}

const detailHeight = 8

// splitVertical divides rows into CPU 32% / MEM 40% / NET 28%, rounded to
// integer line counts with carry so the three add up to exactly rows
// (spec §4.3.1).
func splitVertical(rows int) (cpu, mem, net int) {
	cpuF := float64(rows) * 0.32
	memF := float64(rows) * 0.40

	cpu = int(cpuF + 0.5)
	mem = int(cpuF+memF+0.5) - cpu
	net = rows - cpu - mem

	if cpu < 1 {
		cpu = 1
	}
	if mem < 1 {
		mem = 1
	}
	if net < 1 {
		net = 1
	}
	for cpu+mem+net > rows {
		switch {
		case net > 1:
			net--
		case mem > 1:
			mem--
		default:
			cpu--
		}
	}
	for cpu+mem+net < rows {
		net++
	}
	return cpu, mem, net
}

// MeterColumns picks the CPU inner meter box column count per spec §4.3.3.
// h is the CPU panel's inner height (rows available for the meter grid).
func MeterColumns(threads, h, cols int) int {
	switch {
	case threads > (h-3)*3 && cols >= 200:
		return 4
	case threads > (h-3)*2 && cols >= 150:
		return 3
	case threads > h-3 && cols >= 100:
		return 2
	default:
		return 1
	}
}

// MeterColumnWidth is the fixed per-column width for the CPU inner meter
// box: 24 cells, widened to 37 when temperatures are displayed.
func MeterColumnWidth(showTemps bool) int {
	if showTemps {
		return 37
	}
	return 24
}

// DetailSplit divides the detail pane (spec §4.3.4) into a CPU graph
// column on the left and an info region on the right.
func DetailSplit(d Rect) (graph, info Rect) {
	graphW := d.Width/3 + 2
	if graphW > d.Width {
		graphW = d.Width
	}
	graph = Rect{Line: d.Line, Col: d.Col, Height: d.Height, Width: graphW}
	info = Rect{Line: d.Line, Col: d.Col + graphW, Height: d.Height, Width: d.Width - graphW}
	return graph, info
}
