package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Add(t *testing.T) {
	t.Run("just add with no eviction", func(t *testing.T) {
		evicted := 0
		onEvict := func(k uint64, v string) {
			evicted++
		}

		c, err := New(2, 1024, onEvict)
		require.NoError(t, err)

		for i := 0; i < 100; i += 5 {
			v := fmt.Sprintf("Value %d", i)
			c.Add(uint64(i), v, uint64(len(v)))
		}

		for i := 0; i < 100; i += 5 {
			v, ok := c.Get(uint64(i))
			require.True(t, ok)
			assert.Exactly(t, fmt.Sprintf("Value %d", i), v)
		}

		require.Equal(t, 0, evicted)
		require.Equal(t, 20, c.Count())
	})

	t.Run("add with eviction", func(t *testing.T) {
		evicted := 0
		onEvict := func(k uint64, v string) {
			evicted++
		}

		c, err := New(2, 100, onEvict)
		require.NoError(t, err)

		for i := 0; i < 100; i += 5 {
			v := fmt.Sprintf("Value %d", i)
			c.Add(uint64(i), v, uint64(len(v)))
		}

		require.Greater(t, evicted, 0)
		require.Equal(t, c.Count(), len(c.Keys()))
		require.Less(t, c.Count(), 20)
	})

	t.Run("replacing a key keeps a single entry", func(t *testing.T) {
		c, err := New[string](2, 1024, nil)
		require.NoError(t, err)

		c.Add(1, "one", 3)
		c.Add(1, "uno", 3)

		v, ok := c.Get(1)
		require.True(t, ok)
		assert.Equal(t, "uno", v)
		assert.Equal(t, 1, c.Count())
	})
}

func TestCache_RemoveAndPurge(t *testing.T) {
	c, err := New[string](4, 1024, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.Add(uint64(i), fmt.Sprintf("Value %d", i), 8)
	}
	require.Equal(t, 10, c.Count())

	c.Remove(3)
	_, ok := c.Get(3)
	require.False(t, ok)
	require.Equal(t, 9, c.Count())

	c.Purge()
	require.Equal(t, 0, c.Count())
	require.Empty(t, c.Keys())
}

func TestCache_InvalidConfig(t *testing.T) {
	_, err := New[string](1, 1024, nil)
	require.ErrorIs(t, err, ErrInvalidSharding)

	_, err = New[string](2, 2, nil)
	require.ErrorIs(t, err, ErrIllegalCapacity)
}
