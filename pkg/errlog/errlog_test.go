package errlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMuteRuleCollapsesAfterThreeRepeats(t *testing.T) {
	var b strings.Builder
	l := New(&b, true)
	l.now = func() time.Time { return time.Date(2026, 1, 1, 1, 2, 3, 0, time.UTC) }

	err := errors.New("boom")
	for i := 0; i < 5; i++ {
		l.Error(err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "repeated")
}

func TestDistinctErrorsAllLogged(t *testing.T) {
	var b strings.Builder
	l := New(&b, true)
	l.now = func() time.Time { return time.Date(2026, 1, 1, 1, 2, 3, 0, time.UTC) }

	l.Error(errors.New("a"))
	l.Error(errors.New("b"))
	l.Error(errors.New("c"))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestDisabledLogIsNoOp(t *testing.T) {
	var b strings.Builder
	l := New(&b, false)
	l.Error(errors.New("boom"))
	assert.Empty(t, b.String())
}
