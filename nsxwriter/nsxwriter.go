// Package nsxwriter saves a byte-faithful subset of an NSx continuous
// file: a channel allow-list, an optional size or duration cap per
// output file, and unchanged headers and data otherwise.
package nsxwriter

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/internal/chanset"
	"github.com/BlackrockNeurotech/go-utilities/internal/pool"
	"github.com/BlackrockNeurotech/go-utilities/nsx"
)

// pagingSize bounds how much of the source file is held in memory at
// once while copying sample data.
const pagingSize = 1 << 30 // 1 GiB

const (
	modernBasicHeaderSize = 314
	modernExtHeaderBytes  = 66
	dataByteSize          = 2
)

// Config collects Extract-style options for WriteSubset.
type Config struct {
	channels    []uint32
	fileSizeB   int64
	hasFileSize bool
	fileTimeS   float64
	hasFileTime bool
	suffix      string
	overwrite   bool
}

// Option configures WriteSubset.
type Option func(*Config)

func newConfig() Config {
	return Config{suffix: "subset"}
}

// WithChannels restricts the subset to the given electrode ids. An
// empty allow-list means every channel.
func WithChannels(ids []uint32) Option {
	return func(c *Config) { c.channels = ids }
}

// WithFileSize caps each output file at byteLimit bytes. Ignored if
// WithFileTimeS is also given.
func WithFileSize(byteLimit int64) Option {
	return func(c *Config) { c.fileSizeB = byteLimit; c.hasFileSize = true }
}

// WithFileTimeS caps each output file at the byte count implied by
// seconds of data; takes priority over WithFileSize.
func WithFileTimeS(seconds float64) Option {
	return func(c *Config) { c.fileTimeS = seconds; c.hasFileTime = true }
}

// WithSuffix sets the inserted filename suffix (default "subset").
func WithSuffix(suffix string) Option {
	return func(c *Config) { c.suffix = suffix }
}

// WithOverwrite allows WriteSubset to replace existing output files
// instead of returning errs.ErrOverwriteRefused.
func WithOverwrite(v bool) Option {
	return func(c *Config) { c.overwrite = v }
}

// Result is the outcome of a successful WriteSubset call, including
// the multi-NSP pause diagnostic.
type Result struct {
	// Paths lists the output files written, in sequence order.
	Paths []string
	// Paused reports whether the source file carried more than one
	// data packet, i.e. the recording was paused and resumed by the
	// acquisition hardware (NSP).
	Paused bool
}

// WriteSubset copies f's channel/size-restricted subset to one or
// more output files alongside srcPath, returning the paths written in
// order. A nil result with no error means none of the requested
// channels exist in the file.
func WriteSubset(f *nsx.File, srcPath string, opts ...Option) (*Result, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	allIDs := electrodeIDs(f)
	elecIDs, colIdx, err := resolveChannels(allIDs, cfg.channels)
	if err != nil {
		return nil, err
	}
	if len(elecIDs) == 0 {
		return nil, nil
	}

	legacy := f.Basic.FileSpec.Major == 2 && f.Basic.FileSpec.Minor == 1
	numElecs := len(elecIDs)

	fileSizeB, hasLimit, err := resolveFileSize(f, cfg, numElecs, legacy)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("nsxwriter: open source: %w", err)
	}
	defer src.Close()

	planner := &writer{
		src:       src,
		legacy:    legacy,
		tsWidth:   f.Spec.TimestampWidth(),
		numElecs:  numElecs,
		colIdx:    colIdx,
		channelCt: int(f.Basic.ChannelCount),
		period:    f.Basic.Period,
		fileSizeB: fileSizeB,
		hasLimit:  hasLimit,
		paused:    len(f.Segments) > 1,
	}

	outBase, ext := splitExt(srcPath)
	outBase += "_" + cfg.suffix

	firstPath := outPath(outBase, ext, 0)
	if !cfg.overwrite {
		if _, statErr := os.Stat(firstPath); statErr == nil {
			return nil, fmt.Errorf("nsxwriter: %q exists: %w", firstPath, errs.ErrOverwriteRefused)
		}
	}

	paths, err := planner.run(outBase, ext, elecIDs)
	if err != nil {
		return nil, err
	}

	return &Result{Paths: paths, Paused: planner.paused}, nil
}

func electrodeIDs(f *nsx.File) []uint32 {
	if f.ChannelIDs != nil {
		return f.ChannelIDs
	}
	ids := make([]uint32, len(f.Extended))
	for i, e := range f.Extended {
		ids[i] = uint32(e.ElectrodeID)
	}
	return ids
}

// resolveChannels prunes the requested allow-list against what the
// file actually has, returning the surviving ids in file order along
// with their column indices.
func resolveChannels(allIDs []uint32, want []uint32) ([]uint32, []int, error) {
	if len(want) == 0 {
		idx := make([]int, len(allIDs))
		for i := range idx {
			idx[i] = i
		}
		return append([]uint32(nil), allIDs...), idx, nil
	}

	known := chanset.New(allIDs)
	var requested []uint32
	for _, id := range want {
		if known.Has(id) {
			requested = append(requested, id)
		}
	}
	if len(requested) == 0 {
		return nil, nil, nil
	}

	sel := chanset.New(requested)
	var ids []uint32
	var idx []int
	for i, id := range allIDs {
		if sel.Has(id) {
			ids = append(ids, id)
			idx = append(idx, i)
		}
	}

	return ids, idx, nil
}

// resolveFileSize computes the per-output-file byte cap, preferring a
// duration cap over an explicit byte cap.
func resolveFileSize(f *nsx.File, cfg Config, numElecs int, legacy bool) (int64, bool, error) {
	switch {
	case cfg.hasFileTime:
		bytes := int64(float64(numElecs) * dataByteSize * cfg.fileTimeS *
			float64(f.Basic.TimeStampResolution) / float64(f.Basic.Period))
		return bytes + headerSize(numElecs, legacy), true, nil
	case cfg.hasFileSize:
		if cfg.fileSizeB <= 0 {
			return 0, false, fmt.Errorf("nsxwriter: file size must be positive: %w", errs.ErrInvariantViolation)
		}
		return cfg.fileSizeB, true, nil
	default:
		return 0, false, nil
	}
}

func headerSize(numElecs int, legacy bool) int64 {
	if legacy {
		return 32 + 4*int64(numElecs)
	}
	return modernBasicHeaderSize + modernExtHeaderBytes*int64(numElecs)
}

func splitExt(path string) (base string, ext string) {
	ext = filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}

func outPath(base, ext string, fileNum int) string {
	return fmt.Sprintf("%s_%03d%s", base, fileNum, ext)
}

// writer carries the per-run state needed to stream data-packet
// windows through a pooled buffer and split output files on demand.
type writer struct {
	src       *os.File
	legacy    bool
	tsWidth   int
	numElecs  int
	colIdx    []int
	channelCt int
	period    uint32
	fileSizeB int64
	hasLimit  bool
	paused    bool

	files []*os.File
}

func (w *writer) run(outBase, ext string, elecIDs []uint32) ([]string, error) {
	var paths []string

	out, err := os.Create(outPath(outBase, ext, 0))
	if err != nil {
		return nil, fmt.Errorf("nsxwriter: create output: %w", err)
	}
	w.files = append(w.files, out)
	paths = append(paths, out.Name())

	if err := w.writeHeaders(out, elecIDs); err != nil {
		w.closeAll()
		return nil, err
	}

	fileNum := 1
	writeErr := w.copyData(out, func() (*os.File, error) {
		next, err := os.Create(outPath(outBase, ext, fileNum))
		if err != nil {
			return nil, fmt.Errorf("nsxwriter: create output: %w", err)
		}
		w.files = append(w.files, next)
		if err := w.writeHeaders(next, elecIDs); err != nil {
			return nil, err
		}
		paths = append(paths, next.Name())
		fileNum++
		return next, nil
	})

	closeErr := w.closeAll()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return nil, writeErr
	}

	return paths, nil
}

// closeAll closes every output file opened during this run, in
// order, returning the first error encountered.
func (w *writer) closeAll() error {
	var firstErr error
	for _, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeHeaders rewrites the basic/extended headers with the
// restricted channel set.
func (w *writer) writeHeaders(out *os.File, elecIDs []uint32) error {
	if _, err := w.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("nsxwriter: seek source: %w", err)
	}

	if w.legacy {
		return w.writeLegacyHeaders(out, elecIDs)
	}
	return w.writeModernHeaders(out, elecIDs)
}

func (w *writer) writeLegacyHeaders(out *os.File, elecIDs []uint32) error {
	if err := copyBytes(out, w.src, 28); err != nil {
		return err
	}
	if err := writeU32(out, uint32(len(elecIDs))); err != nil {
		return err
	}
	for _, id := range elecIDs {
		if err := writeU32(out, id); err != nil {
			return err
		}
	}

	if _, err := w.src.Seek(4+4*int64(w.channelCt), io.SeekCurrent); err != nil {
		return fmt.Errorf("nsxwriter: skip source channel list: %w", err)
	}
	return nil
}

func (w *writer) writeModernHeaders(out *os.File, elecIDs []uint32) error {
	if err := copyBytes(out, w.src, 10); err != nil {
		return err
	}

	bytesInHeaders := uint32(modernBasicHeaderSize + modernExtHeaderBytes*len(elecIDs))
	if err := writeU32(out, bytesInHeaders); err != nil {
		return err
	}
	if _, err := w.src.Seek(4, io.SeekCurrent); err != nil {
		return fmt.Errorf("nsxwriter: skip BytesInHeader: %w", err)
	}

	if err := copyBytes(out, w.src, 296); err != nil {
		return err
	}
	if err := writeU32(out, uint32(len(elecIDs))); err != nil {
		return err
	}
	if _, err := w.src.Seek(4, io.SeekCurrent); err != nil {
		return fmt.Errorf("nsxwriter: skip ChannelCount: %w", err)
	}

	want := chanset.New(elecIDs)
	for i := 0; i < w.channelCt; i++ {
		entry := make([]byte, modernExtHeaderBytes)
		if _, err := io.ReadFull(w.src, entry); err != nil {
			return fmt.Errorf("nsxwriter: read extended header %d: %w", i, err)
		}

		id := uint32(entry[2]) | uint32(entry[3])<<8
		if want.Has(id) {
			if _, err := out.Write(entry); err != nil {
				return fmt.Errorf("nsxwriter: write extended header: %w", err)
			}
		}
	}

	return nil
}

func copyBytes(out *os.File, src io.Reader, n int) error {
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return fmt.Errorf("nsxwriter: read %d header bytes: %w", n, err)
	}
	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("nsxwriter: write %d header bytes: %w", n, err)
	}
	return nil
}

func writeU32(out *os.File, v uint32) error {
	buf := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	_, err := out.Write(buf)
	return err
}

// packetSplit tracks the running state needed to patch a data
// packet's segment header with its true sample count as it is
// streamed across one or more output files, and to synthesize a
// fresh segment header for each file the packet spills into. nil for
// legacy output, which has no per-packet segment header to patch.
type packetSplit struct {
	timestamp    uint64
	headerPos    int64
	samplesSoFar int64
}

// copyData streams the remaining source data packets into out,
// windowing each packet's samples through a pooled buffer sized to
// pagingSize, pruning columns outside the allow-list, and opening a
// fresh output file (via next) whenever the byte cap would be
// exceeded. Splitting mid-packet writes a new segment header in the
// continuation file and patches every file's header with the true
// sample count it ends up holding, never reaching back into a file
// already closed.
func (w *writer) copyData(out *os.File, next func() (*os.File, error)) error {
	srcInfo, err := w.src.Stat()
	if err != nil {
		return fmt.Errorf("nsxwriter: stat source: %w", err)
	}
	size := srcInfo.Size()
	full := w.colIdx == nil || len(w.colIdx) == w.channelCt
	srcDataptSize := int64(w.channelCt) * dataByteSize

	cur := out

	for {
		pos, err := w.src.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("nsxwriter: tell source: %w", err)
		}
		if pos >= size {
			break
		}

		if w.legacy {
			packetPts := uint32((size - pos) / srcDataptSize)
			if packetPts == 0 {
				break
			}
			if _, err := w.copyPacketData(cur, packetPts, srcDataptSize, full, next, nil); err != nil {
				return err
			}
			continue
		}

		hdrLen := 1 + w.tsWidth + 4
		hdr := make([]byte, hdrLen)
		if _, err := io.ReadFull(w.src, hdr); err != nil {
			return fmt.Errorf("nsxwriter: read packet header: %w", err)
		}

		packetPts := binary.LittleEndian.Uint32(hdr[1+w.tsWidth:])
		if packetPts == 0 {
			continue
		}

		headerPos, err := cur.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("nsxwriter: tell output: %w", err)
		}
		if _, err := cur.Write(hdr); err != nil {
			return fmt.Errorf("nsxwriter: write packet header: %w", err)
		}

		split := &packetSplit{timestamp: readTimestamp(hdr, w.tsWidth), headerPos: headerPos}

		newCur, err := w.copyPacketData(cur, packetPts, srcDataptSize, full, next, split)
		if err != nil {
			return err
		}
		cur = newCur
	}

	return nil
}

// copyPacketData streams one data packet's samples, pruning columns
// and splitting into additional output files as the byte cap demands.
// split is nil for legacy output (no segment header to patch); for
// modern output it tracks the currently open file's header offset so
// it can be patched once that file's share of the packet is known.
func (w *writer) copyPacketData(cur *os.File, packetPts uint32, srcDataptSize int64, full bool, next func() (*os.File, error), split *packetSplit) (*os.File, error) {
	dstDataptSize := int64(w.numElecs) * dataByteSize
	windowPts := pagingSize / srcDataptSize
	if windowPts < 1 {
		windowPts = 1
	}

	bb := pool.Get()
	defer pool.Put(bb)

	remaining := int64(packetPts)
	var writtenThisFile int64

	for remaining > 0 {
		n := windowPts
		if n > remaining {
			n = remaining
		}

		raw := make([]byte, n*srcDataptSize)
		if _, err := io.ReadFull(w.src, raw); err != nil {
			return cur, fmt.Errorf("nsxwriter: read data window: %w", err)
		}

		bb.Reset()
		if full {
			bb.Write(raw)
		} else {
			bb.Grow(int(n * dstDataptSize))
			for s := int64(0); s < n; s++ {
				base := s * srcDataptSize
				for _, ci := range w.colIdx {
					off := base + int64(ci)*dataByteSize
					bb.Write(raw[off : off+dataByteSize])
				}
			}
		}

		written := int64(0)
		for written < int64(bb.Len()) {
			room := w.roomInCurrentFile(cur)
			chunk := int64(bb.Len()) - written
			if w.hasLimit && chunk > room {
				chunk = room - (room % dstDataptSize)
			}

			if chunk <= 0 {
				if split != nil {
					if err := w.patchNumDataPoints(cur, split.headerPos, writtenThisFile); err != nil {
						return cur, err
					}
				}

				nf, err := next()
				if err != nil {
					return cur, err
				}
				cur = nf
				writtenThisFile = 0

				if split != nil {
					newHeaderPos, err := cur.Seek(0, io.SeekCurrent)
					if err != nil {
						return cur, fmt.Errorf("nsxwriter: tell output: %w", err)
					}

					newTS := split.timestamp + uint64(split.samplesSoFar)*uint64(w.period)
					hdr := makeSegmentHeader(newTS, 0, w.tsWidth)
					if _, err := cur.Write(hdr); err != nil {
						return cur, fmt.Errorf("nsxwriter: write split segment header: %w", err)
					}

					split.headerPos = newHeaderPos
				}

				continue
			}

			if _, err := cur.Write(bb.B[written : written+chunk]); err != nil {
				return cur, fmt.Errorf("nsxwriter: write data: %w", err)
			}

			written += chunk
			samples := chunk / dstDataptSize
			writtenThisFile += samples
			if split != nil {
				split.samplesSoFar += samples
			}
		}

		remaining -= n
	}

	if split != nil {
		if err := w.patchNumDataPoints(cur, split.headerPos, writtenThisFile); err != nil {
			return cur, err
		}
	}

	return cur, nil
}

// roomInCurrentFile returns how many more bytes can be written to cur
// before hitting the configured per-file byte cap.
func (w *writer) roomInCurrentFile(cur *os.File) int64 {
	if !w.hasLimit {
		return math.MaxInt64
	}
	pos, err := cur.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	room := w.fileSizeB - pos
	if room < 0 {
		return 0
	}
	return room
}

// patchNumDataPoints seeks back to a segment header already written
// to f, rewrites its NumDataPoints field with count, then restores
// the write position to the end of file. Never touches any file
// other than the one currently open for writing.
func (w *writer) patchNumDataPoints(f *os.File, headerPos int64, count int64) error {
	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("nsxwriter: tell output: %w", err)
	}

	if _, err := f.Seek(headerPos+1+int64(w.tsWidth), io.SeekStart); err != nil {
		return fmt.Errorf("nsxwriter: seek to patch header: %w", err)
	}
	if err := writeU32(f, uint32(count)); err != nil {
		return fmt.Errorf("nsxwriter: patch NumDataPoints: %w", err)
	}

	if _, err := f.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("nsxwriter: restore output position: %w", err)
	}

	return nil
}

func readTimestamp(hdr []byte, tsWidth int) uint64 {
	if tsWidth == 8 {
		return binary.LittleEndian.Uint64(hdr[1:9])
	}
	return uint64(binary.LittleEndian.Uint32(hdr[1:5]))
}

func makeSegmentHeader(timestamp uint64, numDataPoints uint32, tsWidth int) []byte {
	hdr := make([]byte, 1+tsWidth+4)
	hdr[0] = 0x01
	if tsWidth == 8 {
		binary.LittleEndian.PutUint64(hdr[1:9], timestamp)
	} else {
		binary.LittleEndian.PutUint32(hdr[1:5], uint32(timestamp))
	}
	binary.LittleEndian.PutUint32(hdr[1+tsWidth:], numDataPoints)
	return hdr
}
