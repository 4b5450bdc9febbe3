// Package compress implements the pluggable compressor used by
// segcache to shrink its sidecar segment-table payloads: a small,
// repetitive table of timestamps and sample counts rather than
// columnar time-series data, behind a single Codec interface so the
// compression algorithm can be swapped per cache entry.
package compress

import (
	"fmt"

	"github.com/BlackrockNeurotech/go-utilities/format"
)

// Compressor compresses a segcache payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a segcache payload.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions; every built-in compressor
// implements both ends of its own format.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if c, ok := builtinCodecs[compressionType]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("compress: unsupported compression type: %s", compressionType)
}
