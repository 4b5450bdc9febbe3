// Package nsx decodes Blackrock NSx continuous files: opening the
// basic/extended headers across file-spec revisions 2.1 through 3.x,
// discovering segments (including PTP single-sample segmentation), and
// extracting windowed, optionally resampled data.
package nsx

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/header"
)

// maxSampPerS is the fixed legacy (spec 2.1) sample resolution, in
// ticks per second, used when the file carries no TimeStampResolution
// field of its own.
const maxSampPerS = 30000

// dataByteSize is the on-disk width of one channel sample.
const dataByteSize = 2

// Basic is the file-spec-normalized NSx basic header: the union of
// the legacy and modern on-disk layouts, with every field a caller
// needs regardless of which was read.
type Basic struct {
	FileTypeID          string
	FileSpec            format.Version
	BytesInHeader       uint32
	Label               string
	Comment             string
	Period              uint32
	TimeStampResolution uint32
	SampleResolution    float64
	TimeOrigin          time.Time
	ChannelCount        uint32
}

// SamplesPerSecond returns the nominal sample rate implied by the
// basic header.
func (b Basic) SamplesPerSecond() float64 {
	return b.SampleResolution / float64(b.Period)
}

// ClkPerSamp returns the tick count between consecutive samples.
func (b Basic) ClkPerSamp() float64 {
	return float64(b.Period) * float64(b.TimeStampResolution) / b.SampleResolution
}

// File is an opened NSx continuous file.
type File struct {
	Basic      Basic
	Spec       format.FileSpec
	ChannelIDs []uint32             // spec 2.1 only
	Extended   []header.NsxExtended // spec 2.2+ only
	Segments   []Segment

	ra          *mmap.ReaderAt
	endOfHeader int64
	closed      bool
	closeErr    error
	mu          sync.Mutex
}

// Open reads the basic and extended headers, classifies the file
// spec, and discovers every segment.
func Open(path string) (*File, error) {
	return OpenSeeded(path, nil)
}

// CacheSeed carries previously discovered segment boundaries so
// OpenSeeded can skip the full-file scan discoverSegments otherwise
// performs for a file-spec>=3.0 file. Used by the segcache package to
// accelerate repeated opens of large PTP 3.x recordings; a seed that
// doesn't line up with the file currently on disk is discarded in
// favor of a full scan.
type CacheSeed struct {
	PTPConfirmed bool
	Segments     []Segment
}

// OpenSeeded behaves like Open but accepts a cache seed of previously
// discovered segments. The seed is trusted only after validating it
// against the freshly read header and the file's current size; on
// any mismatch OpenSeeded silently falls back to full discovery, the
// same as a cache miss.
func OpenSeeded(path string, seed *CacheSeed) (*File, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nsx: open %q: %w", path, err)
	}

	f, err := openFrom(ra, seed)
	if err != nil {
		ra.Close()
		return nil, err
	}

	return f, nil
}

func openFrom(ra *mmap.ReaderAt, seed *CacheSeed) (*File, error) {
	tag := make([]byte, 8)
	if _, err := ra.ReadAt(tag, 0); err != nil {
		return nil, fmt.Errorf("nsx: read FileTypeID: %w", err)
	}

	f := &File{ra: ra}
	typeID, err := bytecodec.NewReader(tag).FixedLatin1(8)
	if err != nil {
		return nil, err
	}

	legacy := typeID == "NEURALSG"
	if !legacy && typeID != "NEURALCD" {
		return nil, fmt.Errorf("nsx: FileTypeID %q: %w", typeID, errs.ErrUnknownFileType)
	}

	f.Basic.FileTypeID = typeID

	if legacy {
		if err := f.openLegacy(); err != nil {
			return nil, err
		}
	} else if err := f.openModern(); err != nil {
		return nil, err
	}

	f.endOfHeader = int64(f.Basic.BytesInHeader)

	ptpConfirmed, err := f.discoverOrSeed(seed)
	if err != nil {
		return nil, err
	}

	f.Spec = format.ClassifyNSx(legacy, f.Basic.FileSpec, ptpConfirmed)

	return f, nil
}

// discoverOrSeed uses seed's segments when they validate cleanly
// against the just-parsed header and current file size, otherwise
// performs the ordinary full discovery scan.
func (f *File) discoverOrSeed(seed *CacheSeed) (bool, error) {
	if seed == nil || !f.seedValid(seed) {
		return f.discoverSegments()
	}

	f.Segments = seed.Segments
	return seed.PTPConfirmed, nil
}

// seedValid reports whether seed's segments are consistent with the
// file's current size and header: the first segment must start at or
// after end-of-header (it starts exactly there for a legacy file and
// for a PTP file, whose segment offsets point at a record header, or
// after a leading per-packet header otherwise) and the last segment
// must end exactly at end-of-file. A mismatch means the file changed
// since the seed was captured (different recording, truncated/
// appended data, stale sidecar) and the seed must not be trusted.
func (f *File) seedValid(seed *CacheSeed) bool {
	if len(seed.Segments) == 0 {
		return false
	}

	eoh := int64(f.Basic.BytesInHeader)
	size := f.ra.Len()
	dataPtSize := int64(f.Basic.ChannelCount) * dataByteSize

	first := seed.Segments[0]
	if first.ByteOffsetToData < eoh {
		return false
	}

	last := seed.Segments[len(seed.Segments)-1]
	lastEnd := last.ByteOffsetToData + int64(last.NumSamples)*dataPtSize
	if last.PTP {
		// Every PTP sample carries its own 13-byte record header.
		lastEnd = last.ByteOffsetToData + int64(last.NumSamples)*(13+dataPtSize)
	}
	return lastEnd == int64(size)
}

func (f *File) openLegacy() error {
	buf := make([]byte, 24)
	if _, err := f.ra.ReadAt(buf, 8); err != nil {
		return fmt.Errorf("nsx: read legacy basic header: %w", err)
	}

	var lh header.NsxLegacyBasic
	if err := header.NsxLegacyBasicSchema(&lh).Decode(bytecodec.NewReader(buf)); err != nil {
		return fmt.Errorf("nsx: decode legacy basic header: %w", err)
	}

	f.Basic.FileSpec = format.Version{Major: 2, Minor: 1}
	f.Basic.Label = lh.Label
	f.Basic.Period = lh.Period
	f.Basic.ChannelCount = lh.ChannelCount
	f.Basic.TimeStampResolution = maxSampPerS
	f.Basic.SampleResolution = maxSampPerS
	f.Basic.BytesInHeader = 32 + 4*lh.ChannelCount

	idBuf := make([]byte, 4*lh.ChannelCount)
	if _, err := f.ra.ReadAt(idBuf, 32); err != nil {
		return fmt.Errorf("nsx: read legacy channel ids: %w", err)
	}

	r := bytecodec.NewReader(idBuf)
	f.ChannelIDs = make([]uint32, lh.ChannelCount)
	for i := range f.ChannelIDs {
		v, err := r.U32()
		if err != nil {
			return fmt.Errorf("nsx: legacy channel id %d: %w", i, err)
		}
		f.ChannelIDs[i] = v
	}

	return nil
}

func (f *File) openModern() error {
	buf := make([]byte, 306) // 314-byte basic header minus the 8-byte FileTypeID already read
	if _, err := f.ra.ReadAt(buf, 8); err != nil {
		return fmt.Errorf("nsx: read basic header: %w", err)
	}

	var bh header.NsxBasic
	if err := header.NsxBasicSchema(&bh).Decode(bytecodec.NewReader(buf)); err != nil {
		return fmt.Errorf("nsx: decode basic header: %w", err)
	}

	f.Basic.FileSpec = bh.FileSpec
	f.Basic.BytesInHeader = bh.BytesInHeader
	f.Basic.Label = bh.Label
	f.Basic.Comment = bh.Comment
	f.Basic.Period = bh.Period
	f.Basic.TimeStampResolution = bh.TimeStampResolution
	f.Basic.SampleResolution = float64(bh.TimeStampResolution)
	f.Basic.TimeOrigin = bh.TimeOrigin
	f.Basic.ChannelCount = bh.ChannelCount

	extBuf := make([]byte, 66*bh.ChannelCount)
	if _, err := f.ra.ReadAt(extBuf, 8+306); err != nil {
		return fmt.Errorf("nsx: read extended headers: %w", err)
	}

	r := bytecodec.NewReader(extBuf)
	f.Extended = make([]header.NsxExtended, bh.ChannelCount)
	for i := range f.Extended {
		if err := header.NsxExtendedSchema(&f.Extended[i]).Decode(r); err != nil {
			return fmt.Errorf("nsx: extended header %d: %w", i, err)
		}
	}

	return nil
}

// electrodeIDs returns the available channel ids in file order,
// regardless of spec.
func (f *File) electrodeIDs() []uint32 {
	if f.ChannelIDs != nil {
		return f.ChannelIDs
	}

	ids := make([]uint32, len(f.Extended))
	for i, e := range f.Extended {
		ids[i] = uint32(e.ElectrodeID)
	}

	return ids
}

// Close releases the backing file. Idempotent.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return f.closeErr
	}

	f.closed = true
	f.closeErr = f.ra.Close()

	return f.closeErr
}
