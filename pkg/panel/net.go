package panel

import (
	"fmt"

	"github.com/sysdash/sysdash/pkg/chrome"
	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/graph"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/ring"
	"github.com/sysdash/sysdash/pkg/sampler/net"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// Net renders the network panel: a download graph (upper half, normal
// orientation) and an upload graph (lower half, inverted), each
// auto-scaled by its own graph_max (spec §3, §4.2), with a numeric value
// column to the right matching hi.py's net box layout.
type Net struct {
	rx *ring.Ring[float64]
	tx *ring.Ring[float64]

	rxRows, txRows   []graph.Row
	rxGraph, txGraph graph.Graph

	lastRect  layout.Rect
	lastRXMax float64
	lastTXMax float64
}

// NewNet returns a NET renderer with RX/TX rings sized for the widest
// graph this panel could need (spec §3: "ring of up to 2*net_panel_cols").
func NewNet(cols int) *Net {
	n := cols * 2
	if n < 1 {
		n = 1
	}
	return &Net{rx: ring.New[float64](n), tx: ring.New[float64](n)}
}

// Render draws the NET panel. redraw (the net_dir_redraw dirty flag, set
// when either direction's graph_max changes) forces both graphs to rebuild
// from their history instead of appending, since the vertical scale
// changed under every cached row.
func (n *Net) Render(rect layout.Rect, snap net.Snapshot, th theme.Theme, resized, redraw bool) draw.List {
	var out draw.List
	interior := chrome.Interior(rect)

	valueColWidth := 14
	graphWidth := interior.Width - valueColWidth
	if graphWidth < 1 {
		graphWidth = 1
	}

	geometryChanged := resized || rect != n.lastRect
	rebuild := geometryChanged || redraw || snap.RXGraphMax != n.lastRXMax || snap.TXGraphMax != n.lastTXMax

	if geometryChanged {
		n.rx.SetCap(utils.Max(graphWidth*2, 1))
		n.tx.SetCap(utils.Max(graphWidth*2, 1))
	}
	n.rx.Push(snap.RXBps)
	n.tx.Push(snap.TXBps)

	halfHeight := interior.Height / 2
	if geometryChanged {
		out.Append(chrome.Box(rect, fmt.Sprintf("net: %s", snap.Interface), th.NetBox, th.Title))
		n.rxGraph = graph.Graph{Width: graphWidth, Height: halfHeight, Ramp: th.Download}
		n.txGraph = graph.Graph{Width: graphWidth, Height: interior.Height - halfHeight, Invert: true, Ramp: th.Upload}
	}

	rxHist := graph.History{Values: n.rx.Values(), Max: snap.RXGraphMax}
	txHist := graph.History{Values: n.tx.Values(), Max: snap.TXGraphMax}

	if rebuild {
		n.rxRows = n.rxGraph.Rows(rxHist)
		n.txRows = n.txGraph.Rows(txHist)
	} else {
		n.rxRows = n.rxGraph.Append(n.rxRows, rxHist, snap.RXBps)
		n.txRows = n.txGraph.Append(n.txRows, txHist, snap.TXBps)
	}
	n.lastRect, n.lastRXMax, n.lastTXMax = rect, snap.RXGraphMax, snap.TXGraphMax

	top := n.rxGraph.Render(n.rxRows)
	offsetRows(&top, interior.Line, interior.Col)
	out.Append(top)

	bottom := n.txGraph.Render(n.txRows)
	offsetRows(&bottom, interior.Line+n.rxGraph.Height, interior.Col)
	out.Append(bottom)

	valueCol := interior.Col + graphWidth + 1
	out.MoveTo(interior.Line, valueCol)
	out.SetFG(th.Download.At(100))
	out.PutText("down " + utils.FormatBinarySpeed(snap.RXBps))
	out.MoveTo(interior.Line+1, valueCol)
	out.SetFG(th.MainFG)
	out.PutText(utils.FormatBitsSpeed(snap.RXBps))

	out.MoveTo(interior.Line+halfHeight, valueCol)
	out.SetFG(th.Upload.At(100))
	out.PutText("up   " + utils.FormatBinarySpeed(snap.TXBps))
	out.MoveTo(interior.Line+halfHeight+1, valueCol)
	out.SetFG(th.MainFG)
	out.PutText(utils.FormatBitsSpeed(snap.TXBps))

	out.MoveTo(interior.Line+interior.Height-1, interior.Col)
	out.SetFG(th.InactiveFG)
	out.PutText(fmt.Sprintf("total %s / %s",
		utils.FormatBinaryBytes(int64(snap.RXBytesTotal)), utils.FormatBinaryBytes(int64(snap.TXBytesTotal))))

	out.Reset()
	return out
}
