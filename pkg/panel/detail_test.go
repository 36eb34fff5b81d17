package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
	"github.com/sysdash/sysdash/pkg/theme"
)

func sampleDetailRow() proc.Row {
	return proc.Row{
		PID: 900, Name: "chrome", ArgvTail: "--flag", User: "alice",
		NThreads: 12, MemPct: 9, CPUPct: 40, RSSBytes: 1_500_000,
		Status: "S", ParentPID: 1, ElapsedSec: 3725,
	}
}

func TestDetailRenderShowsStatusAndElapsed(t *testing.T) {
	d := NewDetail(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 10, Width: 60}
	rendered := draw.Render(d.Render(rect, sampleDetailRow(), false, theme.Default, true), 0, 0)

	assert.Contains(t, rendered, "01:02:05")
	assert.Contains(t, rendered, "chrome")
	assert.Contains(t, rendered, "parent 1")
}

func TestDetailRenderShowsRSSBytes(t *testing.T) {
	d := NewDetail(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 10, Width: 60}
	rendered := draw.Render(d.Render(rect, sampleDetailRow(), false, theme.Default, true), 0, 0)

	assert.Contains(t, rendered, "rss 1.50MB")
}

func TestDetailRenderShowsKilledPlaceholder(t *testing.T) {
	d := NewDetail(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 10, Width: 60}
	rendered := draw.Render(d.Render(rect, proc.Row{PID: 42}, true, theme.Default, true), 0, 0)

	assert.Contains(t, rendered, "42")
	assert.Contains(t, rendered, "no longer running")
}

func TestDetailRenderAppendsWithoutResize(t *testing.T) {
	d := NewDetail(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 10, Width: 60}
	d.Render(rect, sampleDetailRow(), false, theme.Default, true)

	assert.NotPanics(t, func() {
		d.Render(rect, sampleDetailRow(), false, theme.Default, false)
	})
}

func TestWrapTextStopsAtMaxLines(t *testing.T) {
	lines := wrapText("abcdefghij", 3, 3)
	assert.Equal(t, []string{"abc", "def", "ghi"}, lines)
}

func TestFormatElapsedHandlesHoursMinutesSeconds(t *testing.T) {
	assert.Equal(t, "00:00:05", formatElapsed(5))
	assert.Equal(t, "01:02:05", formatElapsed(3725))
}
