// Package draw models the frame output as a typed draw-command list instead
// of composing ANSI strings ad hoc (spec §9 design note): MoveTo, SetFg,
// SetBg, PutText, Reset, Repeat. A List is built once per frame (or spliced
// incrementally for a graph append) and executed in one pass against a
// terminal sink, so the emission step stays a single write.
package draw

import (
	"fmt"
	"strings"

	"github.com/sysdash/sysdash/pkg/theme"
)

// Command is one instruction in a draw list.
type Command struct {
	Op   Op
	Line int    // MoveTo
	Col  int    // MoveTo
	FG   theme.RGB
	BG   theme.RGB
	Text string // PutText
	N    int    // Repeat count
}

// Op identifies a Command's kind.
type Op int

const (
	OpMoveTo Op = iota
	OpSetFG
	OpSetBG
	OpPutText
	OpReset
	OpRepeat // repeat Text N times at the current cursor
)

// List is a sequence of draw commands composed for one frame or one
// panel-scoped output buffer.
type List []Command

// MoveTo appends a cursor move, 0-indexed relative to the panel origin.
func (l *List) MoveTo(line, col int) {
	*l = append(*l, Command{Op: OpMoveTo, Line: line, Col: col})
}

// SetFG appends a foreground color change.
func (l *List) SetFG(c theme.RGB) {
	*l = append(*l, Command{Op: OpSetFG, FG: c})
}

// SetBG appends a background color change.
func (l *List) SetBG(c theme.RGB) {
	*l = append(*l, Command{Op: OpSetBG, BG: c})
}

// PutText appends literal text at the current cursor, advancing it.
func (l *List) PutText(text string) {
	*l = append(*l, Command{Op: OpPutText, Text: text})
}

// Reset appends an SGR reset.
func (l *List) Reset() {
	*l = append(*l, Command{Op: OpReset})
}

// Repeat appends n copies of a single glyph at the current cursor.
func (l *List) Repeat(glyph string, n int) {
	*l = append(*l, Command{Op: OpRepeat, Text: glyph, N: n})
}

// Append concatenates other onto l.
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// Render executes the list against a plain terminal sink, returning the raw
// byte sequence (MoveTo is expressed relative to an origin line/col so a
// panel's list can be rendered standalone or composed into a bigger frame).
func Render(list List, originLine, originCol int) string {
	var b strings.Builder
	for _, cmd := range list {
		switch cmd.Op {
		case OpMoveTo:
			fmt.Fprintf(&b, "\x1b[%d;%dH", originLine+cmd.Line+1, originCol+cmd.Col+1)
		case OpSetFG:
			b.WriteString(cmd.FG.Seq())
		case OpSetBG:
			b.WriteString(cmd.BG.BgSeq())
		case OpPutText:
			b.WriteString(cmd.Text)
		case OpReset:
			b.WriteString("\x1b[0m")
		case OpRepeat:
			b.WriteString(strings.Repeat(cmd.Text, cmd.N))
		}
	}
	return b.String()
}
