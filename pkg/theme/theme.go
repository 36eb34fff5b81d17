// Package theme parses the shell-style theme file described in spec §6 and
// builds the 101-entry color ramps the graph/meter builder consumes.
//
// Like the config format, the theme file format is an external collaborator
// (spec §1): the core only depends on the Theme struct and its Ramp type.
//
// Truecolor emission (SGR "38;2;r;g;b") is written out by hand rather than
// through a library: the pack's only RGB color library, gookit/color, is
// present in the teacher's go.sum solely as an indirect, never-imported
// transitive dependency, and only one non-API file of it (convert.go) was
// vendored — not enough to verify its RGBColor surface. Truecolor SGR codes
// are a stable terminal standard, so a direct implementation is the safer
// choice here (see DESIGN.md).
package theme

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/sysdash/sysdash/pkg/utils"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Seq returns the ANSI truecolor foreground escape sequence for c.
func (c RGB) Seq() string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

// BgSeq returns the ANSI truecolor background escape sequence for c.
func (c RGB) BgSeq() string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
}

// Hex renders c as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Ramp is a 101-entry RGB table indexed by percentage 0..100.
type Ramp [101]RGB

// At returns the ramp color for percentage pct, clamped to [0,100].
func (r Ramp) At(pct int) RGB {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return r[pct]
}

// Theme holds the named solid colors and paired ramps from spec §6.
type Theme struct {
	MainBG     RGB
	MainFG     RGB
	Title      RGB
	HiFG       RGB
	InactiveFG RGB
	SelectedFG RGB
	SelectedBG RGB
	ProcMisc   RGB
	DivLine    RGB
	CPUBox     RGB
	MemBox     RGB
	NetBox     RGB
	ProcBox    RGB

	Temp      Ramp
	CPU       Ramp
	Upload    Ramp
	Download  Ramp
	Used      Ramp
	Available Ramp
	Cached    Ramp
	Free      Ramp
}

func lerp(a, b RGB, t float64) RGB {
	f := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return RGB{f(a.R, b.R), f(a.G, b.G), f(a.B, b.B)}
}

func luma(c RGB) int {
	return int(c.R) + int(c.G) + int(c.B)
}

// buildRamp interpolates piecewise-linearly across start->mid->end over the
// 0-100 index. If mid is unset, it is computed per spec §6: end/2 if end is
// brighter than start, else start/2.
func buildRamp(start, mid, end RGB, midSet bool) Ramp {
	if !midSet {
		if luma(end) > luma(start) {
			mid = RGB{end.R / 2, end.G / 2, end.B / 2}
		} else {
			mid = RGB{start.R / 2, start.G / 2, start.B / 2}
		}
	}
	var ramp Ramp
	for i := 0; i <= 100; i++ {
		if i <= 50 {
			ramp[i] = lerp(start, mid, float64(i)/50.0)
		} else {
			ramp[i] = lerp(mid, end, float64(i-50)/50.0)
		}
	}
	return ramp
}

// Default is the compiled-in theme used when no theme file is configured or
// found, matching the spec's "Default" color_theme key.
var Default = buildDefault()

func buildDefault() Theme {
	white := RGB{200, 200, 200}
	grey := RGB{100, 100, 100}
	green := RGB{0, 180, 0}
	brightGreen := RGB{0, 200, 0}
	yellow := RGB{200, 200, 0}
	red := RGB{200, 0, 0}
	blue := RGB{0, 120, 220}
	cyan := RGB{0, 200, 200}
	black := RGB{0, 0, 0}

	return Theme{
		MainBG:     black,
		MainFG:     white,
		Title:      white,
		HiFG:       brightGreen,
		InactiveFG: grey,
		SelectedFG: black,
		SelectedBG: brightGreen,
		ProcMisc:   cyan,
		DivLine:    grey,
		CPUBox:     RGB{0x3d, 0x7b, 0x46},
		MemBox:     RGB{0x8a, 0x88, 0x2e},
		NetBox:     RGB{0x42, 0x3b, 0xa5},
		ProcBox:    RGB{0x92, 0x35, 0x35},

		Temp:      buildRamp(green, RGB{}, red, false),
		CPU:       buildRamp(green, RGB{}, red, false),
		Upload:    buildRamp(green, RGB{}, red, false),
		Download:  buildRamp(blue, RGB{}, cyan, false),
		Used:      buildRamp(green, RGB{}, red, false),
		Available: buildRamp(red, RGB{}, green, false),
		Cached:    buildRamp(blue, RGB{}, cyan, false),
		Free:      buildRamp(red, RGB{}, yellow, false),
	}
}

// Parse reads a shell-style theme file: lines of the form
// `key="#RRGGBB"`, `key="#GG"`, or `key="r g b"`. Paired keys are
// `<name>_start`, `<name>_mid` (optional) and `<name>_end`.
func Parse(content string) (Theme, error) {
	raw := make(map[string]RGB)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		val = strings.Trim(val, `"`)

		c, err := parseColor(val)
		if err != nil {
			return Theme{}, fmt.Errorf("theme key %q: %w", key, err)
		}
		raw[key] = c
	}
	if err := scanner.Err(); err != nil {
		return Theme{}, err
	}

	solid := func(key string, fallback RGB) RGB {
		if c, ok := raw[key]; ok {
			return c
		}
		return fallback
	}

	ramp := func(name string, fallback Ramp) Ramp {
		start, hasStart := raw[name+"_start"]
		end, hasEnd := raw[name+"_end"]
		if !hasStart || !hasEnd {
			return fallback
		}
		mid, hasMid := raw[name+"_mid"]
		return buildRamp(start, mid, end, hasMid)
	}

	th := Theme{
		MainBG:     solid("main_bg", Default.MainBG),
		MainFG:     solid("main_fg", Default.MainFG),
		Title:      solid("title", Default.Title),
		HiFG:       solid("hi_fg", Default.HiFG),
		InactiveFG: solid("inactive_fg", Default.InactiveFG),
		SelectedFG: solid("selected_fg", Default.SelectedFG),
		SelectedBG: solid("selected_bg", Default.SelectedBG),
		ProcMisc:   solid("proc_misc", Default.ProcMisc),
		DivLine:    solid("div_line", Default.DivLine),
		CPUBox:     solid("cpu_box", Default.CPUBox),
		MemBox:     solid("mem_box", Default.MemBox),
		NetBox:     solid("net_box", Default.NetBox),
		ProcBox:    solid("proc_box", Default.ProcBox),

		Temp:      ramp("temp", Default.Temp),
		CPU:       ramp("cpu", Default.CPU),
		Upload:    ramp("upload", Default.Upload),
		Download:  ramp("download", Default.Download),
		Used:      ramp("used", Default.Used),
		Available: ramp("available", Default.Available),
		Cached:    ramp("cached", Default.Cached),
		Free:      ramp("free", Default.Free),
	}
	return th, nil
}

// Render emits content in the canonical theme-file form, which Parse can
// read back to produce an identical Theme (round-trip law, spec §8).
func Render(th Theme) string {
	var b strings.Builder
	solid := func(key string, c RGB) {
		fmt.Fprintf(&b, "%s=\"%s\"\n", key, c.Hex())
	}
	solid("main_bg", th.MainBG)
	solid("main_fg", th.MainFG)
	solid("title", th.Title)
	solid("hi_fg", th.HiFG)
	solid("inactive_fg", th.InactiveFG)
	solid("selected_fg", th.SelectedFG)
	solid("selected_bg", th.SelectedBG)
	solid("proc_misc", th.ProcMisc)
	solid("div_line", th.DivLine)
	solid("cpu_box", th.CPUBox)
	solid("mem_box", th.MemBox)
	solid("net_box", th.NetBox)
	solid("proc_box", th.ProcBox)

	rampPair := func(name string, r Ramp) {
		fmt.Fprintf(&b, "%s_start=\"%s\"\n", name, r.At(0).Hex())
		fmt.Fprintf(&b, "%s_mid=\"%s\"\n", name, r.At(50).Hex())
		fmt.Fprintf(&b, "%s_end=\"%s\"\n", name, r.At(100).Hex())
	}
	rampPair("temp", th.Temp)
	rampPair("cpu", th.CPU)
	rampPair("upload", th.Upload)
	rampPair("download", th.Download)
	rampPair("used", th.Used)
	rampPair("available", th.Available)
	rampPair("cached", th.Cached)
	rampPair("free", th.Free)

	return b.String()
}

func parseColor(v string) (RGB, error) {
	switch {
	case strings.HasPrefix(v, "#"):
		if !utils.IsValidHexValue(v) {
			return RGB{}, fmt.Errorf("invalid hex color %q", v)
		}
		if len(v) == 3 {
			g, err := strconv.ParseUint(v[1:3], 16, 8)
			if err != nil {
				return RGB{}, err
			}
			return RGB{uint8(g), uint8(g), uint8(g)}, nil
		}
		r, err := strconv.ParseUint(v[1:3], 16, 8)
		if err != nil {
			return RGB{}, err
		}
		g, err := strconv.ParseUint(v[3:5], 16, 8)
		if err != nil {
			return RGB{}, err
		}
		bl, err := strconv.ParseUint(v[5:7], 16, 8)
		if err != nil {
			return RGB{}, err
		}
		return RGB{uint8(r), uint8(g), uint8(bl)}, nil
	default:
		parts := strings.Fields(v)
		if len(parts) != 3 {
			return RGB{}, fmt.Errorf("invalid color %q", v)
		}
		var nums [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return RGB{}, err
			}
			nums[i] = uint8(n)
		}
		return RGB{nums[0], nums[1], nums[2]}, nil
	}
}
