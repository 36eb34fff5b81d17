package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysdash/sysdash/pkg/draw"
	"github.com/sysdash/sysdash/pkg/layout"
	"github.com/sysdash/sysdash/pkg/sampler/mem"
	"github.com/sysdash/sysdash/pkg/theme"
)

func TestMemRenderShowsMeterRowsAndDisks(t *testing.T) {
	var m Mem
	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 60}
	snap := mem.Snapshot{
		UsedPct:      60,
		AvailablePct: 40,
		CachedPct:    20,
		FreePct:      30,
		Disks: []mem.DiskUsage{
			{Name: "root", Total: 100000, Used: 50000, UsedPct: 50},
		},
	}

	rendered := draw.Render(m.Render(rect, snap, theme.Default), 0, 0)
	assert.Contains(t, rendered, "mem")
	assert.Contains(t, rendered, "used")
	assert.Contains(t, rendered, "root")
}

func TestMemRenderOmitsSwapRowWhenAbsent(t *testing.T) {
	var m Mem
	rect := layout.Rect{Line: 0, Col: 0, Height: 15, Width: 60}
	rendered := draw.Render(m.Render(rect, mem.Snapshot{}, theme.Default), 0, 0)
	assert.NotContains(t, rendered, "swap")
}

func TestMemRenderStopsAtPanelHeight(t *testing.T) {
	var m Mem
	rect := layout.Rect{Line: 0, Col: 0, Height: 3, Width: 60}
	disks := make([]mem.DiskUsage, 20)
	for i := range disks {
		disks[i] = mem.DiskUsage{Name: "d", Total: 1, Used: 1}
	}
	assert.NotPanics(t, func() {
		m.Render(rect, mem.Snapshot{Disks: disks}, theme.Default)
	})
}
