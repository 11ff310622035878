package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	t.Run("basic mapping", func(t *testing.T) {
		m, err := MapAnon(4096)
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, 4096, m.Size())
		assert.Len(t, m.Bytes(), 4096)
	})

	t.Run("zero filled and writable", func(t *testing.T) {
		m, err := MapAnon(1024)
		require.NoError(t, err)
		defer m.Close()

		data := m.Bytes()
		for i, b := range data {
			require.Zero(t, b, "byte %d not zero", i)
		}

		data[0] = 0xAB
		data[1023] = 0xCD
		assert.Equal(t, byte(0xAB), m.Bytes()[0])
		assert.Equal(t, byte(0xCD), m.Bytes()[1023])
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := MapAnon(0)
		assert.ErrorIs(t, err, ErrInvalidSize)

		_, err = MapAnon(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		m, err := MapAnon(4096)
		require.NoError(t, err)

		require.NoError(t, m.Close())
		require.NoError(t, m.Close())
		assert.Nil(t, m.Bytes())
	})
}
