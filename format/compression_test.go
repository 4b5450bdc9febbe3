package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressionType_String(t *testing.T) {
	cases := map[CompressionType]string{
		CompressionNone:       "None",
		CompressionZstd:       "Zstd",
		CompressionS2:         "S2",
		CompressionLZ4:        "LZ4",
		CompressionType(0xFF): "Unknown",
	}

	for ct, want := range cases {
		assert.Equal(t, want, ct.String())
	}
}
