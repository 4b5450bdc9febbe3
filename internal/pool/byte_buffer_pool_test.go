package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(16)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 16, bb.Cap())
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, bb.Len())
	assert.Equal(t, []byte("hello"), bb.B)

	bb.Reset()
	assert.Equal(t, 0, bb.Len())
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(4)
	startCap := bb.Cap()

	bb.Grow(100)
	assert.GreaterOrEqual(t, bb.Cap(), 100)
	assert.Greater(t, bb.Cap(), startCap)
	assert.Equal(t, 0, bb.Len())
}

func TestByteBuffer_Grow_NoopWhenRoomAvailable(t *testing.T) {
	bb := NewByteBuffer(64)
	bb.Grow(8)

	assert.Equal(t, 64, bb.Cap())
}

func TestByteBuffer_SetLength(t *testing.T) {
	bb := NewByteBuffer(4)

	bb.SetLength(10)
	assert.Equal(t, 10, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 10)
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(8, 64)

	bb := p.Get()
	require.NotNil(t, bb)

	_, err := bb.Write([]byte("payload"))
	require.NoError(t, err)

	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 0, bb2.Len(), "buffer should be reset after returning to the pool")
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	bb := p.Get()
	bb.Grow(100)
	require.Greater(t, bb.Cap(), 16)

	p.Put(bb)

	// Can't directly observe whether bb was discarded, but Put must not
	// panic and a subsequent Get must still succeed.
	bb2 := p.Get()
	require.NotNil(t, bb2)
}

func TestByteBufferPool_PutNil(t *testing.T) {
	p := NewByteBufferPool(8, 64)
	assert.NotPanics(t, func() { p.Put(nil) })
}

func TestPackageDefaultPool(t *testing.T) {
	bb := Get()
	require.NotNil(t, bb)

	_, err := bb.Write([]byte("x"))
	require.NoError(t, err)

	Put(bb)
}
