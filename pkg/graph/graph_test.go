package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/theme"
)

func TestMeterFillsCellsByThreshold(t *testing.T) {
	ramp := GreyscaleRamp()
	list := Meter(10, 50, ramp, false, false, theme.RGB{})
	rendered := draw.Render(list, 0, 0)
	assert.Contains(t, rendered, "■")
}

func TestMeterFillEmptyPadsRemainder(t *testing.T) {
	ramp := GreyscaleRamp()
	list := Meter(10, 0, ramp, true, false, theme.RGB{R: 10, G: 10, B: 10})
	rendered := draw.Render(list, 0, 0)
	assert.Contains(t, rendered, "■")
}

func TestGraphRowsLastRowAllFullForMaxValue(t *testing.T) {
	g := Graph{Width: 5, Height: 2, Ramp: GreyscaleRamp()}
	hist := History{Values: []float64{100, 100, 100, 100, 100}}
	rows := g.Rows(hist)
	last := rows[len(rows)-1]
	for _, c := range last {
		assert.Equal(t, "⣿", c.Glyph)
	}
}

func TestGraphAppendEqualsRebuild(t *testing.T) {
	g := Graph{Width: 4, Height: 3, Ramp: GreyscaleRamp()}

	full := History{Values: []float64{10, 40, 70, 90}}
	rebuiltRows := g.Rows(full)

	prev := History{Values: []float64{10, 40, 70}}
	prevRows := g.Rows(prev)
	appendedRows := g.Append(prevRows, prev, 90)

	assert.Equal(t, draw.Render(g.Render(rebuiltRows), 0, 0), draw.Render(g.Render(appendedRows), 0, 0))
}

func TestGraphNormalizesWithMax(t *testing.T) {
	hist := History{Values: []float64{50, 100, 150}, Max: 100}
	got := normalize(hist)
	assert.Equal(t, []float64{50, 100, 100}, got)
}

func TestMiniOneRowPerValue(t *testing.T) {
	list := Mini([]float64{0, 50, 100}, 3, nil)
	rendered := draw.Render(list, 0, 0)
	assert.NotEmpty(t, rendered)
}
