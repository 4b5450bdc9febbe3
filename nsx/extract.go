package nsx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/internal/chanset"
)

// ExtractedSegment is one windowed, optionally resampled run of
// continuous samples, the per-segment unit of an Extract result.
type ExtractedSegment struct {
	// Timestamps holds one tick per surviving sample when
	// WithFullTimestamps(true) was given, else the single first
	// timestamp of the (possibly windowed) segment.
	Timestamps []uint64

	// Data holds the decoded samples. When ElecRows is true (the
	// default) it is shaped [channel][sample]; otherwise
	// [sample][channel].
	Data [][]int16
}

// Result is the return value of Extract.
type Result struct {
	StartTimeS       float64
	DataTimeS        float64
	DataTimeAll      bool
	ElecIDs          []uint32
	Downsample       int
	SamplesPerSecond float64
	ElecRows         bool
	Segments         []ExtractedSegment
	Warnings         []string
}

// Extract windows, filters, and optionally resamples the file's
// segments per the supplied options: channel selection, start/stop
// time window, zeropad, force_srate, downsample, and row orientation
// are each applied in turn.
func (f *File) Extract(opts ...ExtractOption) (*Result, error) {
	cfg := newExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	res := &Result{
		ElecRows:         cfg.elecRows,
		SamplesPerSecond: f.Basic.SamplesPerSecond(),
	}

	// Step 1: coerce and sanity-check the configuration.
	if cfg.startTimeS < 0 {
		res.Warnings = append(res.Warnings, "start_time_s < 0, coerced to 0")
		cfg.startTimeS = 0
	}
	if cfg.hasDataTimeS && cfg.dataTimeS < 0 {
		res.Warnings = append(res.Warnings, "data_time_s < 0, coerced to all")
		cfg.hasDataTimeS = false
	}
	if cfg.downsample < 1 {
		res.Warnings = append(res.Warnings, "downsample < 1, coerced to 1")
		cfg.downsample = 1
	}
	if cfg.zeropad && f.isPTP() {
		res.Warnings = append(res.Warnings, "zeropad ignored on PTP-timestamped data")
		cfg.zeropad = false
	}
	if cfg.forceSrate && !f.isPTP() {
		res.Warnings = append(res.Warnings, "force_srate ignored on non-PTP data")
		cfg.forceSrate = false
	}

	res.StartTimeS = cfg.startTimeS
	res.DataTimeS = cfg.dataTimeS
	res.DataTimeAll = !cfg.hasDataTimeS
	res.Downsample = cfg.downsample

	// Step 2: resolve the channel allow-list against the file's
	// electrode ids, pruning anything unknown.
	allIDs := f.electrodeIDs()
	wantAll := len(cfg.channels) == 0

	var wide []uint32
	if !wantAll {
		known := chanset.New(allIDs)
		for _, id := range cfg.channels {
			if known.Has(id) {
				wide = append(wide, id)
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("unknown channel id %d ignored", id))
			}
		}
		if len(wide) == 0 {
			res.ElecIDs = nil
			return res, nil
		}
	}

	selected := chanset.New(wide)

	var colIdx []int
	for i, id := range allIDs {
		if wantAll || selected.Has(id) {
			colIdx = append(colIdx, i)
			res.ElecIDs = append(res.ElecIDs, id)
		}
	}

	if len(f.Segments) == 0 {
		return res, nil
	}

	ts0 := f.Segments[0].FirstTimestamp
	r := float64(f.Basic.TimeStampResolution)
	if r == 0 {
		r = f.Basic.SampleResolution
	}

	testStartTS := ts0 + uint64(cfg.startTimeS*r)
	hasStop := cfg.hasDataTimeS
	var testStopTS uint64
	if hasStop {
		testStopTS = ts0 + uint64((cfg.startTimeS+cfg.dataTimeS)*r)
	}

	clkPerSamp := f.Basic.ClkPerSamp()

	for _, seg := range f.Segments {
		segTS := f.timestamps(seg)
		lo, hi := windowIndices(segTS, testStartTS, hasStop, testStopTS)
		if lo >= hi {
			continue
		}

		segTS = segTS[lo:hi]
		numSamples := hi - lo
		nCols := len(colIdx)

		rowStride := int64(f.Basic.ChannelCount) * dataByteSize
		dataStart := seg.ByteOffsetToData
		if seg.PTP {
			// A PTP segment's offset points at its first record's 13-byte
			// {reserved, timestamp, num_data_points} header, and every
			// sample sits behind a record header of its own.
			dataStart += 13
			rowStride += 13
		}

		rows := make([][]int16, numSamples)
		for i := 0; i < numSamples; i++ {
			row := make([]int16, nCols)
			off := dataStart + int64(lo+i)*rowStride
			raw := make([]byte, int64(f.Basic.ChannelCount)*dataByteSize)
			if _, err := f.ra.ReadAt(raw, off); err != nil {
				return nil, fmt.Errorf("nsx: read sample %d: %w", lo+i, err)
			}
			for j, ci := range colIdx {
				row[j] = int16(binary.LittleEndian.Uint16(raw[ci*dataByteSize : ci*dataByteSize+2]))
			}
			rows[i] = row
		}

		if cfg.zeropad && len(res.Segments) == 0 {
			padSize := int(math.Ceil(float64(seg.FirstTimestamp) / float64(f.Basic.Period)))
			if padSize > 0 {
				padRows := make([][]int16, padSize)
				for i := range padRows {
					padRows[i] = make([]int16, nCols)
				}
				rows = append(padRows, rows...)

				padTS := make([]uint64, padSize)
				for i := range padTS {
					padTS[i] = uint64(float64(i) * clkPerSamp)
				}
				segTS = append(padTS, segTS...)
			}
		}

		if cfg.forceSrate && seg.PTP && len(segTS) >= 2 {
			rows, segTS = forceSampleRate(rows, segTS, clkPerSamp)
		}

		if cfg.downsample > 1 {
			rows = decimateRows(rows, cfg.downsample)
			segTS = decimateTimestamps(segTS, cfg.downsample)
		}

		outTS := segTS
		if !cfg.fullTimestamps && len(segTS) > 0 {
			outTS = segTS[:1]
		}

		var data [][]int16
		if cfg.elecRows {
			data = transpose(rows, nCols)
		} else {
			data = rows
		}

		res.Segments = append(res.Segments, ExtractedSegment{
			Timestamps: outTS,
			Data:       data,
		})
	}

	return res, nil
}

func (f *File) isPTP() bool {
	return f.Spec == format.FileSpecV3xPTP
}

// windowIndices returns the [lo, hi) sample range of ts that falls
// within the closed interval [testStart, testStop]: every kept
// timestamp t satisfies testStart <= t <= testStop, so a sample
// landing exactly on the stop boundary is still included.
func windowIndices(ts []uint64, testStart uint64, hasStop bool, testStop uint64) (int, int) {
	lo := 0
	for lo < len(ts) && ts[lo] < testStart {
		lo++
	}

	hi := len(ts)
	if hasStop {
		hi = lo
		for hi < len(ts) && ts[hi] <= testStop {
			hi++
		}
	}

	return lo, hi
}

// forceSampleRate inserts or deletes linearly interpolated samples so
// the segment's sample count matches its elapsed PTP duration exactly.
func forceSampleRate(rows [][]int16, ts []uint64, clkPerSamp float64) ([][]int16, []uint64) {
	segClks := float64(ts[len(ts)-1] - ts[0])
	nExpected := int(math.Round(segClks/clkPerSamp)) + 1
	nInsert := nExpected - len(rows)
	if nInsert == 0 {
		return rows, ts
	}

	if nInsert > 0 {
		return insertSamples(rows, ts, nInsert, clkPerSamp)
	}

	return deleteSamples(rows, ts, -nInsert)
}

func insertSamples(rows [][]int16, ts []uint64, nInsert int, clkPerSamp float64) ([][]int16, []uint64) {
	if nInsert <= 0 || len(rows) < 2 {
		return rows, ts
	}

	gaps := len(rows) - 1

	outRows := make([][]int16, 0, len(rows)+nInsert)
	outTS := make([]uint64, 0, len(ts)+nInsert)

	inserted := 0
	for i := 0; i < len(rows); i++ {
		outRows = append(outRows, rows[i])
		outTS = append(outTS, ts[i])

		if i == gaps {
			break
		}

		// Spread all nInsert samples evenly over the gaps between
		// neighbouring samples.
		for due := nInsert * (i + 1) / gaps; inserted < due; inserted++ {
			outRows = append(outRows, interpolateRow(rows[i], rows[i+1]))
			outTS = append(outTS, ts[i]+uint64(clkPerSamp/2))
		}
	}

	return outRows, outTS
}

func deleteSamples(rows [][]int16, ts []uint64, nDelete int) ([][]int16, []uint64) {
	if nDelete <= 0 || nDelete >= len(rows) {
		return rows, ts
	}

	deleteEvery := len(rows) / nDelete
	if deleteEvery < 1 {
		deleteEvery = 1
	}

	outRows := make([][]int16, 0, len(rows)-nDelete)
	outTS := make([]uint64, 0, len(ts)-nDelete)

	deleted := 0
	for i := 0; i < len(rows); i++ {
		if deleted < nDelete && i%deleteEvery == deleteEvery-1 {
			deleted++
			continue
		}
		outRows = append(outRows, rows[i])
		outTS = append(outTS, ts[i])
	}

	return outRows, outTS
}

func interpolateRow(a, b []int16) []int16 {
	out := make([]int16, len(a))
	for i := range out {
		out[i] = int16((int32(a[i]) + int32(b[i])) / 2)
	}
	return out
}

func decimateRows(rows [][]int16, factor int) [][]int16 {
	out := make([][]int16, 0, (len(rows)+factor-1)/factor)
	for i := 0; i < len(rows); i += factor {
		out = append(out, rows[i])
	}
	return out
}

func decimateTimestamps(ts []uint64, factor int) []uint64 {
	out := make([]uint64, 0, (len(ts)+factor-1)/factor)
	for i := 0; i < len(ts); i += factor {
		out = append(out, ts[i])
	}
	return out
}

// transpose flips [sample][channel] into [channel][sample] for the
// elec_rows=true output shape.
func transpose(rows [][]int16, nCols int) [][]int16 {
	out := make([][]int16, nCols)
	for c := range out {
		out[c] = make([]int16, len(rows))
	}

	for i, row := range rows {
		for c, v := range row {
			out[c][i] = v
		}
	}

	return out
}
