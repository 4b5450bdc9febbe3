package header

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/errs"
)

func TestSchema_Decode(t *testing.T) {
	var a uint8
	var b uint16

	s := Schema{
		{"A", func(r *bytecodec.Reader) (err error) { a, err = r.U8(); return }},
		{"B", func(r *bytecodec.Reader) (err error) { b, err = r.U16(); return }},
	}

	r := bytecodec.NewReader([]byte{0x01, 0x02, 0x00})
	require.NoError(t, s.Decode(r))

	assert.Equal(t, uint8(1), a)
	assert.Equal(t, uint16(2), b)
}

func TestSchema_Decode_WrapsFieldName(t *testing.T) {
	s := Schema{
		{"Truncated", func(r *bytecodec.Reader) (err error) { _, err = r.U32(); return }},
	}

	err := s.Decode(bytecodec.NewReader([]byte{0x00}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Truncated")
	assert.True(t, errors.Is(err, errs.ErrUnexpectedEOF))
}

func TestReadTag(t *testing.T) {
	r := bytecodec.NewReader([]byte("NEUEVWAV"))

	tag, err := ReadTag(r)
	require.NoError(t, err)
	assert.Equal(t, "NEUEVWAV", tag)
}

func TestLookup(t *testing.T) {
	registry := map[string]Schema{
		"NEUEVWAV": {},
	}

	s, err := Lookup(registry, "NEUEVWAV")
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = Lookup(registry, "UNKNOWN!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnknownHeaderKind))
}
