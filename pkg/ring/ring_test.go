package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushEvictsOldest(t *testing.T) {
	r := New[int](3)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Push(4)

	assert.Equal(t, []int{2, 3, 4}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestNeverExceedsCap(t *testing.T) {
	r := New[int](5)
	for i := 0; i < 100; i++ {
		r.Push(i)
		assert.LessOrEqual(t, r.Len(), r.Cap())
	}
}

func TestSetCapTrims(t *testing.T) {
	r := New[int](5)
	for i := 0; i < 5; i++ {
		r.Push(i)
	}
	r.SetCap(2)
	assert.Equal(t, []int{3, 4}, r.Values())
}

func TestLast(t *testing.T) {
	r := New[int](3)
	_, ok := r.Last()
	assert.False(t, ok)

	r.Push(7)
	v, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}
