package fake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamera_ReplaysFramesInOrder(t *testing.T) {
	c := New(Payload("a"), Payload("b"))
	require.NoError(t, c.Open(1))
	assert.Equal(t, 1, c.Index())

	f1, ok := c.Read()
	require.True(t, ok)
	f2, ok := c.Read()
	require.True(t, ok)

	assert.Equal(t, "a", string(f1.Data))
	assert.Equal(t, "b", string(f2.Data))
	assert.Less(t, f1.Seq, f2.Seq)
	assert.NotEmpty(t, f1.TraceID)
	assert.False(t, f1.Timestamp.IsZero())

	_, ok = c.Read()
	assert.False(t, ok, "exhausted camera must report failure")
	assert.Equal(t, 3, c.Reads())
}

func TestCamera_Repeat(t *testing.T) {
	c := New(Payload("a")).Repeat()
	require.NoError(t, c.Open(0))

	for i := 0; i < 3; i++ {
		f, ok := c.Read()
		require.True(t, ok)
		assert.Equal(t, "a", string(f.Data))
	}
}

func TestCamera_ReadBeforeOpenFails(t *testing.T) {
	c := New(Payload("a"))
	_, ok := c.Read()
	assert.False(t, ok)
}

func TestCamera_FailOpen(t *testing.T) {
	boom := errors.New("no such device")
	c := New().FailOpen(boom)

	assert.ErrorIs(t, c.Open(0), boom)
	assert.False(t, c.IsOpen())
	assert.Equal(t, -1, c.Index())
}

func TestCamera_Release(t *testing.T) {
	c := New(Payload("a"))
	require.NoError(t, c.Open(0))

	require.NoError(t, c.Release())
	assert.False(t, c.IsOpen())
	assert.Error(t, c.Release())
	assert.Equal(t, 2, c.Released())

	_, ok := c.Read()
	assert.False(t, ok)
}
