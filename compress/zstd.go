package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool and zstdDecoderPool hold warmed-up pure-Go zstd
// encoders/decoders. The teacher also carries a cgo-backed variant
// (valyala/gozstd) behind a build tag that's dead in its own tree
// (see DESIGN.md); we keep only the pure-Go path it falls back to.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("compress: zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("compress: zstd decoder: %v", err))
		}
		return dec
	},
}

// ZstdCodec compresses with Zstandard, the best-ratio choice for a
// segcache payload that's written once at Open time and read many
// times afterward.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec returns a Zstd codec.
func NewZstdCodec() ZstdCodec { return ZstdCodec{} }

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: zstd decode: %w", err)
	}

	return out, nil
}
