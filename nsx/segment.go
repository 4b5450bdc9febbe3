package nsx

import (
	"encoding/binary"
	"fmt"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/header"
)

// Segment is a run of consecutive samples with a known start time.
// Timestamps is populated lazily by timestamps().
type Segment struct {
	FirstTimestamp   uint64
	NumSamples       uint32
	ByteOffsetToData int64

	// PTP is true when SampleTimestamps must be read verbatim
	// per-sample rather than derived arithmetically from
	// FirstTimestamp. Exported so the segcache package can persist
	// and restore discovered segments without re-scanning the file.
	PTP              bool
	SampleTimestamps []uint64
}

// seg2ClkThreshold is the multiple of clk_per_samp past which a PTP
// inter-sample gap starts a new logical segment.
const seg2ClkThreshold = 2

// discoverSegments populates f.Segments and reports whether the file
// was confirmed to carry one PTP-timestamped sample per packet.
func (f *File) discoverSegments() (bool, error) {
	size := int64(f.ra.Len())
	eoh := int64(f.Basic.BytesInHeader)

	switch {
	case f.ChannelIDs != nil:
		return false, f.discoverLegacySegment(eoh, size)
	case f.Basic.FileSpec.Major >= 3:
		confirmed, err := f.discoverPTPOrMultiSample(eoh, size)
		return confirmed, err
	default:
		return false, f.discoverMultiSampleSegments(eoh, size, 4)
	}
}

func (f *File) discoverLegacySegment(eoh, size int64) error {
	dataPtSize := int64(f.Basic.ChannelCount) * dataByteSize
	if dataPtSize == 0 {
		return fmt.Errorf("nsx: zero channel count: %w", errs.ErrInvariantViolation)
	}

	numSamples := (size - eoh) / dataPtSize
	f.Segments = []Segment{{
		FirstTimestamp:   0,
		NumSamples:       uint32(numSamples),
		ByteOffsetToData: eoh,
	}}

	return nil
}

// discoverMultiSampleSegments walks the {reserved, timestamp,
// num_data_points} packet stream (spec 2.2/2.3, and spec >=3.0 when
// not confirmed PTP), one segment per packet.
func (f *File) discoverMultiSampleSegments(eoh, size int64, tsWidth int) error {
	dataPtSize := int64(f.Basic.ChannelCount) * dataByteSize

	pos := eoh
	for pos < size {
		hdrLen := int64(1 + tsWidth + 4)
		buf := make([]byte, hdrLen)
		if _, err := f.ra.ReadAt(buf, pos); err != nil {
			return fmt.Errorf("nsx: read segment header at %d: %w", pos, err)
		}

		var sh header.NsxSegmentHeader
		if err := header.NsxSegmentHeaderSchema(&sh, tsWidth).Decode(bytecodec.NewReader(buf)); err != nil {
			return fmt.Errorf("nsx: decode segment header at %d: %w", pos, err)
		}

		dataStart := pos + hdrLen
		f.Segments = append(f.Segments, Segment{
			FirstTimestamp:   sh.Timestamp,
			NumSamples:       sh.NumDataPoints,
			ByteOffsetToData: dataStart,
		})

		pos = dataStart + int64(sh.NumDataPoints)*dataPtSize
	}

	return nil
}

// discoverPTPOrMultiSample scans the whole spec->=3.0 file once as
// fixed {u8, u64, u32, i16[ChannelCount]} records. If every record
// carries exactly one sample, the file uses PTP single-sample
// packets and is re-segmented by inter-sample gap; otherwise it's
// treated as ordinary multi-sample packets with an 8-byte timestamp.
func (f *File) discoverPTPOrMultiSample(eoh, size int64) (bool, error) {
	recLen := int64(1 + 8 + 4 + int(f.Basic.ChannelCount)*dataByteSize)
	if recLen <= 13 {
		return false, fmt.Errorf("nsx: zero channel count: %w", errs.ErrInvariantViolation)
	}

	n := (size - eoh) / recLen
	if n <= 0 {
		return false, nil
	}

	type record struct {
		timestamp uint64
	}

	records := make([]record, n)
	allSingleSample := true

	buf := make([]byte, 13)
	for i := int64(0); i < n; i++ {
		off := eoh + i*recLen
		if _, err := f.ra.ReadAt(buf, off); err != nil {
			return false, fmt.Errorf("nsx: scan record %d: %w", i, err)
		}

		ts := binary.LittleEndian.Uint64(buf[1:9])
		numPts := binary.LittleEndian.Uint32(buf[9:13])

		records[i] = record{timestamp: ts}
		if numPts != 1 {
			allSingleSample = false
		}
	}

	if !allSingleSample {
		return false, f.discoverMultiSampleSegments(eoh, size, 8)
	}

	clkPerSamp := f.Basic.ClkPerSamp()
	threshold := seg2ClkThreshold * clkPerSamp

	segStart := 0
	for i := 1; i <= len(records); i++ {
		atEnd := i == len(records)
		newSeg := atEnd || float64(records[i].timestamp-records[i-1].timestamp) > threshold

		if newSeg {
			seg := Segment{
				FirstTimestamp:   records[segStart].timestamp,
				NumSamples:       uint32(i - segStart),
				ByteOffsetToData: eoh + int64(segStart)*recLen,
				PTP:              true,
			}

			ts := make([]uint64, i-segStart)
			for j := segStart; j < i; j++ {
				ts[j-segStart] = records[j].timestamp
			}
			seg.SampleTimestamps = ts

			f.Segments = append(f.Segments, seg)
			segStart = i
		}
	}

	return true, nil
}

// timestamps materializes the per-sample timestamp vector for seg,
// deriving it arithmetically for non-PTP segments and returning the
// verbatim per-sample vector for PTP segments.
func (f *File) timestamps(seg Segment) []uint64 {
	if seg.PTP {
		return seg.SampleTimestamps
	}

	clkPerSamp := f.Basic.ClkPerSamp()
	ts := make([]uint64, seg.NumSamples)
	for i := range ts {
		ts[i] = seg.FirstTimestamp + uint64(float64(i)*clkPerSamp)
	}

	return ts
}
