// Package utils holds small string/formatting helpers shared across the
// sampler, layout and panel packages.
package utils

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// WithPadding pads a string (ignoring any embedded SGR sequences) out to width.
func WithPadding(str string, width int) string {
	uncoloredStr := Decolorise(str)
	if width < runewidth.StringWidth(uncoloredStr) {
		return str
	}
	return str + strings.Repeat(" ", width-runewidth.StringWidth(uncoloredStr))
}

// ColoredString applies a fatih/color attribute to a string.
func ColoredString(str string, colorAttribute color.Attribute) string {
	if colorAttribute == color.FgWhite {
		return str
	}
	colour := color.New(colorAttribute)
	return ColoredStringDirect(str, colour)
}

// ColoredStringDirect renders str through an already-built *color.Color.
func ColoredStringDirect(str string, colour *color.Color) string {
	return colour.SprintFunc()(fmt.Sprint(str))
}

// Max returns the maximum of two integers.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// Min returns the minimum of two integers.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var ansiPattern = regexp.MustCompile(`\x1B\[([0-9]{1,3}(;[0-9]{1,3})*)?[mK]`)

// Decolorise strips any SGR escape sequences from str.
func Decolorise(str string) string {
	return ansiPattern.ReplaceAllString(str, "")
}

var binaryUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBinaryBytes renders a byte count using 1024-based prefixes, e.g.
// "976.56KiB".
func FormatBinaryBytes(b int64) string {
	n := float64(b)
	for _, unit := range binaryUnits {
		if n < 1024 || unit == binaryUnits[len(binaryUnits)-1] {
			if unit == "B" {
				return fmt.Sprintf("%dB", int64(n))
			}
			return fmt.Sprintf("%.2f%s", n, unit)
		}
		n /= 1024
	}
	return "0B"
}

var decimalUnits = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}

// FormatDecimalBytes renders a byte count using 1000-based prefixes.
func FormatDecimalBytes(b int64) string {
	n := float64(b)
	for _, unit := range decimalUnits {
		if n < 1000 || unit == decimalUnits[len(decimalUnits)-1] {
			if unit == "B" {
				return fmt.Sprintf("%dB", int64(n))
			}
			return fmt.Sprintf("%.2f%s", n, unit)
		}
		n /= 1000
	}
	return "0B"
}

// FormatBinarySpeed renders a bytes/sec rate as e.g. "976.56KiB/s".
func FormatBinarySpeed(bytesPerSec float64) string {
	return FormatBinaryBytes(int64(bytesPerSec)) + "/s"
}

// FormatBitsSpeed renders a bytes/sec rate as a binary-prefixed bits/sec
// value, e.g. "7.63Mibps" (the spec accepts either the binary-bit or the
// decimal-bit unit; we use the binary-bit convention to match the
// binary-prefix byte formatting used everywhere else).
func FormatBitsSpeed(bytesPerSec float64) string {
	bits := bytesPerSec * 8
	units := []string{"bps", "Kibps", "Mibps", "Gibps", "Tibps"}
	n := bits
	for i, unit := range units {
		if n < 1024 || i == len(units)-1 {
			if unit == "bps" {
				return fmt.Sprintf("%dbps", int64(n))
			}
			return fmt.Sprintf("%.2f%s", n, unit)
		}
		n /= 1024
	}
	return "0bps"
}

// FormatFreq renders a CPU frequency in MHz as e.g. "3.40GHz" once it
// crosses 1000MHz, else "850MHz" (spec §4.1: "format as MHz/GHz").
func FormatFreq(mhz float64) string {
	if mhz <= 0 {
		return "?MHz"
	}
	if mhz >= 1000 {
		return fmt.Sprintf("%.2fGHz", mhz/1000)
	}
	return fmt.Sprintf("%.0fMHz", mhz)
}

var strftimeCodes = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "01", 'd': "02",
	'H': "15", 'I': "03", 'M': "04", 'S': "05",
	'p': "PM", 'A': "Monday", 'a': "Mon", 'B': "January", 'b': "Jan",
	'X': "15:04:05", 'x': "01/02/06", 'Z': "MST",
}

// Strftime renders t using a strftime-style format string (spec §6's
// draw_clock key), covering the subset of codes a clock glyph plausibly
// needs. Unknown codes pass through literally rather than erroring, since
// a clock display degrading gracefully beats the program refusing to
// start over a config typo.
func Strftime(format string, t time.Time) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			b.WriteByte(format[i])
			continue
		}
		i++
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}
		if layout, ok := strftimeCodes[format[i]]; ok {
			b.WriteString(t.Format(layout))
		} else {
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

// GetColorAttribute gets a fatih/color attribute from a theme key name.
func GetColorAttribute(key string) color.Attribute {
	colorMap := map[string]color.Attribute{
		"default":   color.FgWhite,
		"black":     color.FgBlack,
		"red":       color.FgRed,
		"green":     color.FgGreen,
		"yellow":    color.FgYellow,
		"blue":      color.FgBlue,
		"magenta":   color.FgMagenta,
		"cyan":      color.FgCyan,
		"white":     color.FgWhite,
		"bold":      color.Bold,
		"underline": color.Underline,
	}
	if value, present := colorMap[key]; present {
		return value
	}
	return color.FgWhite
}

type multiErr []error

func (m multiErr) Error() string {
	var b strings.Builder
	b.WriteString("encountered multiple errors:")
	for _, err := range m {
		b.WriteString("\n\t... " + err.Error())
	}
	return b.String()
}

// CloseMany closes every closer, returning an aggregate error if any failed.
func CloseMany(closers []io.Closer) error {
	errs := make([]error, 0, len(closers))
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return multiErr(errs)
	}
	return nil
}

// SafeTruncate truncates str to at most limit bytes.
func SafeTruncate(str string, limit int) string {
	if len(str) > limit {
		return str[0:limit]
	}
	return str
}

// IsValidHexValue reports whether v is a "#RRGGBB" or "#GG" hex color.
func IsValidHexValue(v string) bool {
	if len(v) != 3 && len(v) != 7 {
		return false
	}
	if v[0] != '#' {
		return false
	}
	for _, char := range v[1:] {
		switch {
		case char >= '0' && char <= '9':
		case char >= 'a' && char <= 'f':
		case char >= 'A' && char <= 'F':
		default:
			return false
		}
	}
	return true
}

// Round1 rounds v to one decimal place, the display precision spec uses for
// cpu% and mem%.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
