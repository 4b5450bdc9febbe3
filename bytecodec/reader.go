// Package bytecodec provides the primitive little-endian fixed-width
// reader used by the header decoder and the NEV/NSx decoders (spec
// section 4.1, "Byte Codec"). It knows nothing about header layouts;
// it only knows how to pull fixed-width values off a byte slice and
// advance a cursor, and how to format the handful of composite fields
// (FileSpec pairs, TimeOrigin, FilterType, ...) that the original
// decoder expresses as "two bytes plus a post-format function".
package bytecodec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/BlackrockNeurotech/go-utilities/errs"
)

// Reader is a cursor-based little-endian reader over a borrowed byte
// slice. It never copies the input; callers that need an owned copy
// of a returned []byte must copy it themselves.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reading starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek repositions the cursor to an absolute offset. It does not
// validate the offset against the data length; out-of-range reads
// after a bad Seek surface as ErrUnexpectedEOF.
func (r *Reader) Seek(offset int) { r.pos = offset }

func (r *Reader) require(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.pos, r.Remaining(), errs.ErrUnexpectedEOF)
	}

	return nil
}

// Bytes returns a zero-copy slice of the next n bytes and advances
// the cursor.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}

	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// I8 reads a signed 8-bit integer.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads an unsigned little-endian 16-bit integer.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads a signed little-endian 16-bit integer.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads an unsigned little-endian 32-bit integer.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a signed little-endian 32-bit integer.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads an unsigned little-endian 64-bit integer.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// F32 reads an IEEE-754 little-endian single-precision float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// Bool reads a one-byte boolean (any non-zero byte is true).
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// FixedLatin1 reads an n-byte Latin-1 string and truncates it at the
// first NUL byte, matching `format_stripstring` in the original
// decoder.
func (r *Reader) FixedLatin1(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}

	return latin1Truncate(b), nil
}

// latin1Truncate decodes raw Latin-1 bytes to a Go string, truncating
// at the first NUL. Every byte 0x00-0xFF maps 1:1 to the identically
// numbered Unicode code point, so this is a direct byte->rune
// widening, not a table lookup.
func latin1Truncate(b []byte) string {
	for i, c := range b {
		if c == 0x00 {
			b = b[:i]
			break
		}
	}

	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}

	return string(runes)
}
