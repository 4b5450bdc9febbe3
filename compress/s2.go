package compress

import "github.com/klauspost/compress/s2"

// S2Codec compresses with Klaus Post's S2, a Snappy-compatible
// format tuned for speed over ratio — a reasonable default for a
// segcache payload that is rebuilt and read on every nsx.Open.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec returns an S2 codec.
func NewS2Codec() S2Codec { return S2Codec{} }

func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
