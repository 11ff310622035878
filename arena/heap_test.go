package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap(t *testing.T) {
	h := NewHeap()

	t.Run("alloc", func(t *testing.T) {
		buf, err := h.Alloc(128)
		require.NoError(t, err)
		assert.Len(t, buf, 128)

		buf, err = h.Alloc(0)
		require.NoError(t, err)
		assert.Nil(t, buf)
	})

	t.Run("realloc preserves contents", func(t *testing.T) {
		buf, err := h.Alloc(8)
		require.NoError(t, err)
		copy(buf, []byte{1, 2, 3, 4, 5, 6, 7, 8})

		grown, err := h.Realloc(buf, 32)
		require.NoError(t, err)
		require.Len(t, grown, 32)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, grown[:8])
	})
}

func TestSlice(t *testing.T) {
	h := NewHeap()

	buf, err := h.Alloc(4 * SizeOf[uint64]())
	require.NoError(t, err)

	s := Slice[uint64](buf, 4)
	require.Len(t, s, 4)

	s[0] = 42
	s[3] = 7
	assert.Equal(t, uint64(42), s[0])
	assert.Equal(t, uint64(7), s[3])

	assert.Nil(t, Slice[uint64](nil, 0))
	assert.Nil(t, Slice[uint64](buf, 0))
}
