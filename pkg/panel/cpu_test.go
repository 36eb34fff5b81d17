package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/sampler/cpu"
	"github.com/sysdash/sysdash/pkg/theme"
)

func snapWithThreads(n int) cpu.Snapshot {
	usage := make([]float64, n+1)
	for i := range usage {
		usage[i] = 50
	}
	return cpu.Snapshot{Usage: usage, FreqMHz: 3400}
}

func TestNewCPUClampsRingCapacity(t *testing.T) {
	c := NewCPU(0)
	assert.Equal(t, 1, c.usage.Cap())

	c2 := NewCPU(40)
	assert.Equal(t, 80, c2.usage.Cap())
}

func TestCPURenderDrawsChromeOnFirstFrame(t *testing.T) {
	c := NewCPU(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 12, Width: 80}

	list := c.Render(rect, snapWithThreads(4), theme.Default, true)
	rendered := draw.Render(list, 0, 0)

	assert.Contains(t, rendered, "┌")
	assert.Contains(t, rendered, "cpu")
}

func TestCPUTitleIncludesNameWhenSet(t *testing.T) {
	c := NewCPU(40)
	snap := snapWithThreads(2)
	snap.Name = "Ryzen 9"
	assert.Equal(t, "cpu Ryzen 9 3.40GHz", c.title(snap))
}

func TestCPUTitleOmitsNameWhenEmpty(t *testing.T) {
	c := NewCPU(40)
	assert.Equal(t, "cpu 3.40GHz", c.title(snapWithThreads(2)))
}

func TestCPURenderSkipsChromeWhenNotResized(t *testing.T) {
	c := NewCPU(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 12, Width: 80}

	c.Render(rect, snapWithThreads(4), theme.Default, true)
	list := c.Render(rect, snapWithThreads(4), theme.Default, false)
	rendered := draw.Render(list, 0, 0)

	assert.NotContains(t, rendered, "┌")
}

func TestCPURenderHandlesZeroThreads(t *testing.T) {
	c := NewCPU(40)
	rect := layout.Rect{Line: 0, Col: 0, Height: 12, Width: 80}

	assert.NotPanics(t, func() {
		c.Render(rect, cpu.Snapshot{Usage: []float64{0}}, theme.Default, true)
	})
}
