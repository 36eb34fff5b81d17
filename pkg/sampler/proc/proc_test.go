package proc

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysdash/sysdash/pkg/errlog"
)

func TestArgvTailStripsExecutableName(t *testing.T) {
	assert.Equal(t, "--flag value", argvTail("myproc --flag value", "myproc"))
	assert.Equal(t, "", argvTail("myproc", "myproc"))
	assert.Equal(t, "", argvTail("", "myproc"))
}

func TestDeltaCPUPercentFirstSampleIsZero(t *testing.T) {
	s := New(errlog.New(discard{}, false))
	pct := s.deltaCPUPercent(int32(os.Getpid()), 1)
	assert.Equal(t, 0.0, pct)
}

func TestDeltaCPUPercentSecondSampleUsesElapsedTime(t *testing.T) {
	s := New(errlog.New(discard{}, false))
	pid := int32(os.Getpid())
	cur := time.Now()
	s.now = func() time.Time { return cur }
	_ = s.deltaCPUPercent(pid, 1)

	s.now = func() time.Time { return cur.Add(100 * time.Millisecond) }
	pct := s.deltaCPUPercent(pid, 1)
	require.GreaterOrEqual(t, pct, 0.0)
}

func TestGCDropsUnseenPIDs(t *testing.T) {
	s := New(errlog.New(discard{}, false))
	s.prev[1] = prevTick{ticks: 10, at: time.Now()}
	s.prev[2] = prevTick{ticks: 20, at: time.Now()}

	s.gc(map[int32]bool{1: true})

	_, ok1 := s.prev[1]
	_, ok2 := s.prev[2]
	assert.True(t, ok1)
	assert.False(t, ok2)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
