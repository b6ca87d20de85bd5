package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	value int
}

func TestAllocAndGet(t *testing.T) {
	var a Arena[item]
	h1, i1 := a.Alloc()
	i1.value = 1
	h2, i2 := a.Alloc()
	i2.value = 2

	assert.False(t, h1.IsNil())
	assert.Equal(t, 2, a.Len())

	got, ok := a.Get(h1)
	require.True(t, ok)
	assert.Equal(t, 1, got.value)
	got, ok = a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, got.value)

	_, ok = a.Get(Nil)
	assert.False(t, ok)
}

func TestPointersSurviveGrowth(t *testing.T) {
	var a Arena[item]
	h, first := a.Alloc()
	first.value = 42
	for i := 0; i < 1000; i++ {
		a.Alloc()
	}
	got, ok := a.Get(h)
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 42, got.value)
}

func TestFreeRecyclesWithNewGeneration(t *testing.T) {
	var a Arena[item]
	h1, i1 := a.Alloc()
	i1.value = 7
	a.Alloc()

	require.True(t, a.Free(h1))
	assert.False(t, a.Free(h1), "double free must be rejected")
	assert.False(t, a.Valid(h1))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, a.FreeSlots())

	h3, i3 := a.Alloc()
	assert.Equal(t, h1.Index(), h3.Index(), "freed slot is reused before growing")
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, 0, i3.value, "recycled items are zeroed")
	assert.False(t, a.Valid(h1), "stale handle must not alias the new item")
	assert.True(t, a.Valid(h3))
	assert.Equal(t, 2, a.Slots())
}

func TestEachAndAt(t *testing.T) {
	var a Arena[item]
	var handles []Handle
	for i := 0; i < 5; i++ {
		h, it := a.Alloc()
		it.value = i
		handles = append(handles, h)
	}
	a.Free(handles[2])

	var values []int
	a.Each(func(_ Handle, it *item) bool {
		values = append(values, it.value)
		return true
	})
	assert.Equal(t, []int{0, 1, 3, 4}, values)
	assert.Len(t, a.Handles(), 4)

	_, _, ok := a.At(2)
	assert.False(t, ok)
	h, it, ok := a.At(3)
	require.True(t, ok)
	assert.Equal(t, handles[3], h)
	assert.Equal(t, 3, it.value)
}

func TestClear(t *testing.T) {
	var a Arena[item]
	h, _ := a.Alloc()
	a.Alloc()
	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Valid(h))

	h2, _ := a.Alloc()
	assert.Equal(t, 0, h2.Index())
	assert.NotEqual(t, h, h2)
}
