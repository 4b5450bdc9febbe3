package bytecodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackrockNeurotech/go-utilities/errs"
)

func TestReader_FixedWidthFields(t *testing.T) {
	data := []byte{
		0x7F,       // U8 -> 127
		0x01, 0x02, // U16 -> 0x0201
		0x03, 0x04, 0x05, 0x06, // U32 -> 0x06050403
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // U64 -> 1
		0x00, 0x00, 0x80, 0x3F, // F32 -> 1.0
		0x01, // Bool -> true
	}

	r := NewReader(data)

	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x06050403), u32)

	u64, err := r.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u64)

	f32, err := r.F32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), f32)

	b, err := r.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, 0, r.Remaining())
}

func TestReader_SignedFields(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	i8, err := r.I8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	i16, err := r.I16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1), i16)

	i32, err := r.I32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)
}

func TestReader_UnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x01})

	_, err := r.U32()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnexpectedEOF))
}

func TestReader_SeekAndPos(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3, 4})

	_, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Pos())

	r.Seek(0)
	assert.Equal(t, 0, r.Pos())
	assert.Equal(t, 5, r.Remaining())
}

func TestReader_Bytes_ZeroCopy(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)

	b, err := r.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	// Mutating the returned slice mutates the source, confirming no copy.
	b[0] = 0xFF
	assert.Equal(t, byte(0xFF), data[0])
}

func TestReader_FixedLatin1_TruncatesAtNUL(t *testing.T) {
	r := NewReader([]byte{'h', 'i', 0x00, 'x', 'x'})

	s, err := r.FixedLatin1(5)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestReader_FixedLatin1_NoTrailingNUL(t *testing.T) {
	r := NewReader([]byte{'h', 'e', 'l', 'l', 'o'})

	s, err := r.FixedLatin1(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestReader_FixedLatin1_HighBytes(t *testing.T) {
	r := NewReader([]byte{0xE9}) // Latin-1 'e' with acute accent

	s, err := r.FixedLatin1(1)
	require.NoError(t, err)
	assert.Equal(t, string(rune(0xE9)), s)
}
