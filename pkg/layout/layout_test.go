package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsEnforcesFloor(t *testing.T) {
	assert.False(t, Fits(24, 80))
	assert.False(t, Fits(25, 79))
	assert.True(t, Fits(25, 80))
}

func TestSplitVerticalSumsToRows(t *testing.T) {
	for _, rows := range []int{25, 40, 50, 97, 200} {
		cpu, mem, net := splitVertical(rows)
		assert.Equal(t, rows, cpu+mem+net)
		assert.GreaterOrEqual(t, cpu, 1)
		assert.GreaterOrEqual(t, mem, 1)
		assert.GreaterOrEqual(t, net, 1)
	}
}

func TestComputeFullWidthPanels(t *testing.T) {
	g := Compute(50, 120, false)
	assert.Equal(t, 120, g.CPU.Width)
	assert.Equal(t, g.NET.Width, g.MEM.Width)
	assert.Equal(t, g.NET.Width+g.PROC.Width, 120)
}

func TestComputeProcSpansMemAndNet(t *testing.T) {
	g := Compute(50, 120, false)
	assert.Equal(t, g.MEM.Line, g.PROC.Line)
	assert.Equal(t, g.MEM.Height+g.NET.Height, g.PROC.Height)
}

func TestComputeReservesDetailPane(t *testing.T) {
	without := Compute(50, 120, false)
	with := Compute(50, 120, true)
	assert.Equal(t, detailHeight, with.Detail.Height)
	assert.Equal(t, without.PROC.Height-detailHeight, with.PROC.Height)
}

func TestMeterColumnsThresholds(t *testing.T) {
	assert.Equal(t, 1, MeterColumns(4, 20, 80))
	assert.Equal(t, 2, MeterColumns(30, 20, 100))
	assert.Equal(t, 3, MeterColumns(60, 20, 150))
	assert.Equal(t, 4, MeterColumns(90, 20, 200))
}

func TestMeterColumnWidthWidensForTemps(t *testing.T) {
	assert.Equal(t, 24, MeterColumnWidth(false))
	assert.Equal(t, 37, MeterColumnWidth(true))
}

func TestDetailSplitAddsToFullWidth(t *testing.T) {
	d := Rect{Line: 10, Col: 0, Height: 8, Width: 90}
	g, info := DetailSplit(d)
	assert.Equal(t, d.Width, g.Width+info.Width)
	assert.Equal(t, d.Height, g.Height)
	assert.Equal(t, d.Height, info.Height)
}
