package nsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMultiSampleFile(t *testing.T, channelCount uint32, numSamples uint32) *File {
	t.Helper()

	header := buildModernHeader(2, 2, 314+66*channelCount, "ns2", 1, 30000, channelCount)

	var ext []byte
	for c := uint32(1); c <= channelCount; c++ {
		ext = append(ext, buildExtHeader(uint16(c), "e")...)
	}

	pkt := buildDataPacket(4, 0, numSamples, channelCount, func(s, c int) int16 { return int16(s*100 + c) })

	path := writeNsxFile(t, "extract.ns2", header, ext, pkt)

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return f
}

func TestExtract_AllChannelsAllSamples(t *testing.T) {
	f := openMultiSampleFile(t, 2, 5)

	res, err := f.Extract()
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2}, res.ElecIDs)
	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Data, 2) // elec rows: one row per channel
	assert.Len(t, res.Segments[0].Data[0], 5)
	assert.Equal(t, int16(0), res.Segments[0].Data[0][0])
	assert.Equal(t, int16(401), res.Segments[0].Data[1][4])
}

func TestExtract_ChannelFilter(t *testing.T) {
	f := openMultiSampleFile(t, 2, 5)

	res, err := f.Extract(WithChannels([]uint32{2}))
	require.NoError(t, err)

	assert.Equal(t, []uint32{2}, res.ElecIDs)
	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Data, 1)
}

func TestExtract_UnknownChannelWarns(t *testing.T) {
	f := openMultiSampleFile(t, 2, 5)

	res, err := f.Extract(WithChannels([]uint32{999}))
	require.NoError(t, err)

	assert.Nil(t, res.ElecIDs)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtract_ElecRowsFalse(t *testing.T) {
	f := openMultiSampleFile(t, 2, 3)

	res, err := f.Extract(WithElecRows(false))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Data, 3) // sample rows
	assert.Len(t, res.Segments[0].Data[0], 2)
}

func TestExtract_Downsample(t *testing.T) {
	f := openMultiSampleFile(t, 1, 10)

	res, err := f.Extract(WithDownsample(2))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Data[0], 5)
}

func TestExtract_FullTimestamps(t *testing.T) {
	f := openMultiSampleFile(t, 1, 4)

	res, err := f.Extract(WithFullTimestamps(true))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Timestamps, 4)
}

func TestExtract_DefaultSingleTimestamp(t *testing.T) {
	f := openMultiSampleFile(t, 1, 4)

	res, err := f.Extract()
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Timestamps, 1)
}

func TestExtract_NegativeStartTimeCoerced(t *testing.T) {
	f := openMultiSampleFile(t, 1, 4)

	res, err := f.Extract(WithStartTimeS(-5))
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.StartTimeS)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtract_StartTimeWindow(t *testing.T) {
	header := buildModernHeader(2, 2, 314+66, "ns2", 1, 1, 1)
	ext := buildExtHeader(1, "e1")
	pkt := buildDataPacket(4, 0, 10, 1, func(s, c int) int16 { return int16(s) })
	path := writeNsxFile(t, "window.ns2", header, ext, pkt)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	// period=1, resolution=1 => clk_per_samp=1, one tick per second.
	// Window starting at second 5 keeps ticks 5..9.
	res, err := f.Extract(WithStartTimeS(5), WithFullTimestamps(true))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Timestamps, 5)
}

func TestExtract_StopTimeWindowIsInclusive(t *testing.T) {
	header := buildModernHeader(2, 2, 314+66, "ns2", 1, 1, 1)
	ext := buildExtHeader(1, "e1")
	pkt := buildDataPacket(4, 0, 10, 1, func(s, c int) int16 { return int16(s) })
	path := writeNsxFile(t, "stop-window.ns2", header, ext, pkt)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	// period=1, resolution=1 => clk_per_samp=1; data_time_s=5 sets the
	// stop bound at tick 5, which is itself a sample timestamp and must
	// be kept, not dropped.
	res, err := f.Extract(WithDataTimeS(5), WithFullTimestamps(true))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	require.Len(t, res.Segments[0].Timestamps, 6)
	assert.Equal(t, uint64(5), res.Segments[0].Timestamps[5])
}

func TestExtract_ZeropadAppliesToFirstReturnedSegmentNotFirstOnDiskSegment(t *testing.T) {
	header := buildModernHeader(2, 2, 314+66, "ns2", 1, 1, 1)
	ext := buildExtHeader(1, "e1")
	// Two on-disk segments: [0..4] at ts 0, [100..104] at ts 100.
	segA := buildDataPacket(4, 0, 5, 1, func(s, c int) int16 { return int16(s) })
	segB := buildDataPacket(4, 100, 5, 1, func(s, c int) int16 { return int16(100 + s) })
	path := writeNsxFile(t, "zeropad-skip.ns2", header, ext, segA, segB)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, f.Segments, 2)

	// A window starting at second 50 falls entirely after segment A, so
	// segment B is the only (and first returned) segment. Zeropad must
	// still prepend zeros back to t=0 for it, not skip padding just
	// because segment B isn't f.Segments[0].
	res, err := f.Extract(WithStartTimeS(50), WithZeropad(true), WithFullTimestamps(true))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	got := res.Segments[0]
	assert.Equal(t, uint64(0), got.Timestamps[0])
	assert.Len(t, got.Timestamps, 105) // 100 padded zero samples + 5 real samples
	assert.Equal(t, int16(0), got.Data[0][0])
	assert.Equal(t, int16(100), got.Data[0][100])
}

func TestExtract_ForceSrateInsertsMissingPTPSamples(t *testing.T) {
	header := buildModernHeader(3, 0, 314+66, "ns3", 1, 30000, 1)
	ext := buildExtHeader(1, "e1")

	// PTP records at ts 0,2,4,5: clk_per_samp=1 so this run of 4 ticks
	// 0..5 should hold 6 samples; every gap (2,2,1) stays at or under
	// the segment threshold (2*clk_per_samp), so it's one segment with
	// 2 samples missing.
	r0 := buildPTPRecord(0, 1, func(c int) int16 { return 0 })
	r1 := buildPTPRecord(2, 1, func(c int) int16 { return 1 })
	r2 := buildPTPRecord(4, 1, func(c int) int16 { return 2 })
	r3 := buildPTPRecord(5, 1, func(c int) int16 { return 3 })
	path := writeNsxFile(t, "ptp-force-srate.ns3", header, ext, r0, r1, r2, r3)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, f.Segments, 1)
	assert.True(t, f.Segments[0].PTP)

	resNoForce, err := f.Extract(WithFullTimestamps(true))
	require.NoError(t, err)
	require.Len(t, resNoForce.Segments, 1)
	assert.Len(t, resNoForce.Segments[0].Timestamps, 4)

	res, err := f.Extract(WithForceSrate(true), WithFullTimestamps(true))
	require.NoError(t, err)

	require.Len(t, res.Segments, 1)
	assert.Greater(t, len(res.Segments[0].Timestamps), len(resNoForce.Segments[0].Timestamps))
}
