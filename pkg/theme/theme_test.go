package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSolidColorFormats(t *testing.T) {
	content := `main_fg="#aabbcc"
selected_bg="#1a"
title="10 20 30"
`
	th, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, RGB{0xaa, 0xbb, 0xcc}, th.MainFG)
	assert.Equal(t, RGB{0x1a, 0x1a, 0x1a}, th.SelectedBG)
	assert.Equal(t, RGB{10, 20, 30}, th.Title)
}

func TestParseFallsBackToDefaultForMissingKeys(t *testing.T) {
	th, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default.MainFG, th.MainFG)
	assert.Equal(t, Default.CPU, th.CPU)
}

func TestRampMidComputedWhenAbsent(t *testing.T) {
	// end brighter than start -> mid = end/2
	dim := RGB{0, 0, 0}
	bright := RGB{200, 0, 0}
	ramp := buildRamp(dim, RGB{}, bright, false)
	assert.Equal(t, RGB{100, 0, 0}, ramp[50])

	// start brighter than end -> mid = start/2
	ramp2 := buildRamp(bright, RGB{}, dim, false)
	assert.Equal(t, RGB{100, 0, 0}, ramp2[50])
}

func TestRoundTrip(t *testing.T) {
	rendered := Render(Default)
	reparsed, err := Parse(rendered)
	require.NoError(t, err)

	rerendered := Render(reparsed)
	assert.Equal(t, rendered, rerendered)
}

func TestRampAtClamps(t *testing.T) {
	r := Default.CPU
	assert.Equal(t, r[0], r.At(-5))
	assert.Equal(t, r[100], r.At(150))
}
