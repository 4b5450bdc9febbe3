package nsx

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func i16le(v int16) []byte {
	return u16le(uint16(v))
}

func latin1Fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// buildLegacyHeader returns a spec 2.1 "NEURALSG" basic header plus
// its channel id table, as laid out on disk.
func buildLegacyHeader(label string, period, channelCount uint32) []byte {
	var buf []byte
	buf = append(buf, latin1Fixed("NEURALSG", 8)...)
	buf = append(buf, latin1Fixed(label, 16)...)
	buf = append(buf, u32le(period)...)
	buf = append(buf, u32le(channelCount)...)

	for i := uint32(0); i < channelCount; i++ {
		buf = append(buf, u32le(i+1)...)
	}

	return buf
}

// buildModernHeader returns a spec >=2.2 "NEURALCD" basic header (314
// bytes: 8-byte FileTypeID + 306-byte NsxBasic schema).
func buildModernHeader(major, minor uint8, bytesInHeader uint32, label string, period, tsRes, channelCount uint32) []byte {
	var buf []byte
	buf = append(buf, latin1Fixed("NEURALCD", 8)...)
	buf = append(buf, major, minor)
	buf = append(buf, u32le(bytesInHeader)...)
	buf = append(buf, latin1Fixed(label, 16)...)
	buf = append(buf, latin1Fixed("", 256)...)
	buf = append(buf, u32le(period)...)
	buf = append(buf, u32le(tsRes)...)
	buf = append(buf, u16le(2024)...) // year
	buf = append(buf, u16le(1)...)    // month
	buf = append(buf, u16le(0)...)    // day of week
	buf = append(buf, u16le(1)...)    // day
	buf = append(buf, u16le(0)...)    // hour
	buf = append(buf, u16le(0)...)    // minute
	buf = append(buf, u16le(0)...)    // second
	buf = append(buf, u16le(0)...)    // millisecond
	buf = append(buf, u32le(channelCount)...)

	if len(buf) != 314 {
		panic("test helper: modern basic header not 314 bytes")
	}

	return buf
}

// buildExtHeader returns one 66-byte NsxExtended entry.
func buildExtHeader(electrodeID uint16, label string) []byte {
	var buf []byte
	buf = append(buf, latin1Fixed("CC", 2)...)
	buf = append(buf, u16le(electrodeID)...)
	buf = append(buf, latin1Fixed(label, 16)...)
	buf = append(buf, 0, 0) // PhysicalConnector, ConnectorPin
	buf = append(buf, i16le(-32768)...)
	buf = append(buf, i16le(32767)...)
	buf = append(buf, i16le(-5000)...)
	buf = append(buf, i16le(5000)...)
	buf = append(buf, latin1Fixed("uV", 16)...)
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(0)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(0)...)
	buf = append(buf, u16le(0)...)

	if len(buf) != 66 {
		panic("test helper: extended header not 66 bytes")
	}

	return buf
}

// buildDataPacket returns one {reserved, timestamp, numDataPoints}
// segment header followed by numSamples*channelCount little-endian
// int16 samples, each filled via sample(sampleIdx, channelIdx).
func buildDataPacket(tsWidth int, ts uint64, numSamples, channelCount uint32, sample func(s, c int) int16) []byte {
	var buf []byte
	buf = append(buf, 1)
	if tsWidth == 8 {
		buf = append(buf, u64le(ts)...)
	} else {
		buf = append(buf, u32le(uint32(ts))...)
	}
	buf = append(buf, u32le(numSamples)...)

	for s := 0; s < int(numSamples); s++ {
		for c := 0; c < int(channelCount); c++ {
			buf = append(buf, i16le(sample(s, c))...)
		}
	}

	return buf
}

// buildPTPRecord returns one spec>=3.0 single-sample PTP record:
// {reserved, u64 timestamp, u32 numDataPoints=1, int16 per channel}.
func buildPTPRecord(ts uint64, channelCount uint32, sample func(c int) int16) []byte {
	var buf []byte
	buf = append(buf, 1)
	buf = append(buf, u64le(ts)...)
	buf = append(buf, u32le(1)...)

	for c := 0; c < int(channelCount); c++ {
		buf = append(buf, i16le(sample(c))...)
	}

	return buf
}

func writeNsxFile(t *testing.T, name string, chunks ...[]byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)

	var data []byte
	for _, c := range chunks {
		data = append(data, c...)
	}

	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}
