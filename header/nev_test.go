package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/format"
)

func TestNevBasicSchema(t *testing.T) {
	var buf []byte
	buf = append(buf, latin1Fixed("NEURALEV", 8)...)
	buf = append(buf, 2, 3) // FileSpec 2.3
	buf = append(buf, u16le(0)...)
	buf = append(buf, u32le(336)...)
	buf = append(buf, u32le(104)...)
	buf = append(buf, u32le(30000)...)
	buf = append(buf, u32le(30000)...)
	buf = append(buf, u16le(2023)...)
	buf = append(buf, u16le(6)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, u16le(1)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, u16le(0)...)
	buf = append(buf, latin1Fixed("Central", 32)...)
	buf = append(buf, latin1Fixed("", 256)...)
	buf = append(buf, u32le(3)...)

	var h NevBasic
	require.NoError(t, NevBasicSchema(&h).Decode(bytecodec.NewReader(buf)))

	assert.Equal(t, "NEURALEV", h.FileTypeID)
	assert.Equal(t, format.Version{Major: 2, Minor: 3}, h.FileSpec)
	assert.Equal(t, uint32(336), h.BytesInHeader)
	assert.Equal(t, uint32(104), h.BytesInDataPackets)
	assert.Equal(t, "Central", h.CreatingApplication)
	assert.Equal(t, uint32(3), h.NumExtendedHeaders)
	assert.Equal(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), h.TimeOrigin)
}

func TestNevExtSchema_NEUEVWAV(t *testing.T) {
	var buf []byte
	buf = append(buf, u16le(12)...)  // ElectrodeID
	buf = append(buf, 1, 2)          // PhysicalConnector, ConnectorPin
	buf = append(buf, u16le(150)...) // DigitizationFactor
	buf = append(buf, u16le(0)...)   // EnergyThreshold
	buf = append(buf, u16le(uint16(int16(100)))...)
	buf = append(buf, u16le(uint16(int16(-100)))...)
	buf = append(buf, 1)             // NumSortedUnits
	buf = append(buf, 2)             // BytesPerWaveform
	buf = append(buf, u16le(48)...)  // SpikeWidthSamples
	buf = append(buf, make([]byte, 8)...)

	var h NevExtHeader
	require.NoError(t, NevExtSchema("NEUEVWAV", &h).Decode(bytecodec.NewReader(buf)))

	assert.Equal(t, uint16(12), h.ElectrodeID)
	assert.Equal(t, uint16(150), h.DigitizationFactor)
	assert.Equal(t, int16(100), h.HighThreshold)
	assert.Equal(t, int16(-100), h.LowThreshold)
	assert.Equal(t, uint8(1), h.NumSortedUnits)
	assert.Equal(t, uint16(48), h.SpikeWidthSamples)
}

func TestNevExtSchema_NEUEVLBL(t *testing.T) {
	var buf []byte
	buf = append(buf, u16le(7)...)
	buf = append(buf, latin1Fixed("elec7", 16)...)
	buf = append(buf, make([]byte, 6)...)

	var h NevExtHeader
	require.NoError(t, NevExtSchema("NEUEVLBL", &h).Decode(bytecodec.NewReader(buf)))

	assert.Equal(t, uint16(7), h.ElectrodeID)
	assert.Equal(t, "elec7", h.Label)
}

func TestNevExtSchema_TextTags(t *testing.T) {
	for _, tag := range []string{"ARRAYNME", "ECOMMENT", "CCOMMENT", "MAPFILE"} {
		buf := latin1Fixed("hello", 24)

		var h NevExtHeader
		require.NoError(t, NevExtSchema(tag, &h).Decode(bytecodec.NewReader(buf)))
		assert.Equal(t, "hello", h.Text)
	}
}

func TestNevExtSchema_Unknown(t *testing.T) {
	assert.Nil(t, NevExtSchema("BOGUSTAG", &NevExtHeader{}))
}

func TestNevExtSchema_DIGLABEL(t *testing.T) {
	var buf []byte
	buf = append(buf, latin1Fixed("digport", 16)...)
	buf = append(buf, 1) // parallel
	buf = append(buf, make([]byte, 7)...)

	var h NevExtHeader
	require.NoError(t, NevExtSchema("DIGLABEL", &h).Decode(bytecodec.NewReader(buf)))

	assert.Equal(t, "digport", h.Label)
	assert.Equal(t, format.DigitalModeParallel, h.Mode)
}
