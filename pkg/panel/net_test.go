package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/sampler/net"
	"github.com/sysdash/sysdash/pkg/theme"
)

func baseNetSnapshot() net.Snapshot {
	return net.Snapshot{
		Interface:  "eth0",
		RXBps:      1024,
		TXBps:      512,
		RXGraphMax: net.MinGraphMax,
		TXGraphMax: net.MinGraphMax,
	}
}

func TestNetRenderDrawsChromeOnFirstFrame(t *testing.T) {
	n := NewNet(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 14, Width: 50}

	rendered := draw.Render(n.Render(rect, baseNetSnapshot(), theme.Default, true, false), 0, 0)
	assert.Contains(t, rendered, "┌")
	assert.Contains(t, rendered, "eth0")
	assert.Contains(t, rendered, "down")
	assert.Contains(t, rendered, "up")
}

func TestNetRenderSkipsChromeOnPlainAppend(t *testing.T) {
	n := NewNet(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 14, Width: 50}

	n.Render(rect, baseNetSnapshot(), theme.Default, true, false)
	rendered := draw.Render(n.Render(rect, baseNetSnapshot(), theme.Default, false, false), 0, 0)
	assert.NotContains(t, rendered, "┌")
}

func TestNetRenderRebuildsOnGraphMaxChange(t *testing.T) {
	n := NewNet(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 14, Width: 50}

	n.Render(rect, baseNetSnapshot(), theme.Default, true, false)

	snap := baseNetSnapshot()
	snap.RXGraphMax = net.MinGraphMax * 2
	assert.NotPanics(t, func() {
		n.Render(rect, snap, theme.Default, false, true)
	})
}
