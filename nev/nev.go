// Package nev decodes Blackrock NEV event files: opening the basic and
// extended headers, and bulk-extracting event packets classified by
// PacketID into typed slices.
package nev

import (
	"fmt"
	"sync"

	"golang.org/x/exp/mmap"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/header"
)

// waveformSamples21 is the fixed waveform length on file-spec <2.3,
// where SpikeWidthSamples isn't reliably present on disk.
const waveformSamples21 = 48

// File is an opened NEV event file. Headers are read once at Open and
// are immutable afterward; Extract performs a bulk read of the
// remaining packets on each call.
type File struct {
	Basic         header.NevBasic
	ExtendedByTag map[string][]header.NevExtHeader
	Extended      []header.NevExtHeader
	tsBytes       int

	ra       *mmap.ReaderAt
	closeErr error
	closed   bool
	mu       sync.Mutex
}

// Open reads the basic header and every extended header from path.
// The file stays mapped until Close.
func Open(path string) (*File, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nev: open %q: %w", path, err)
	}

	f, err := openFrom(ra)
	if err != nil {
		ra.Close()
		return nil, err
	}

	return f, nil
}

func openFrom(ra *mmap.ReaderAt) (*File, error) {
	head := make([]byte, 336)
	if _, err := ra.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("nev: read basic header: %w", err)
	}

	f := &File{ra: ra, ExtendedByTag: make(map[string][]header.NevExtHeader)}

	r := bytecodec.NewReader(head)
	if err := header.NevBasicSchema(&f.Basic).Decode(r); err != nil {
		return nil, fmt.Errorf("nev: decode basic header: %w", err)
	}

	if f.Basic.FileTypeID != "NEURALEV" && f.Basic.FileTypeID != "BREVENTS" {
		return nil, fmt.Errorf("nev: FileTypeID %q: %w", f.Basic.FileTypeID, errs.ErrUnknownFileType)
	}

	if f.Basic.BytesInDataPackets < 8 {
		return nil, fmt.Errorf("nev: BytesInDataPackets %d below minimum 8: %w",
			f.Basic.BytesInDataPackets, errs.ErrInvariantViolation)
	}

	if f.Basic.FileTypeID == "BREVENTS" {
		f.tsBytes = 8
	} else {
		f.tsBytes = 4
	}

	extBuf := make([]byte, int(f.Basic.BytesInHeader)-336)
	if len(extBuf) > 0 {
		if _, err := ra.ReadAt(extBuf, 336); err != nil {
			return nil, fmt.Errorf("nev: read extended headers: %w", err)
		}
	}

	er := bytecodec.NewReader(extBuf)
	for i := uint32(0); i < f.Basic.NumExtendedHeaders; i++ {
		tag, err := header.ReadTag(er)
		if err != nil {
			return nil, fmt.Errorf("nev: extended header %d tag: %w", i, err)
		}

		var eh header.NevExtHeader
		eh.PacketID = tag

		schema := header.NevExtSchema(tag, &eh)
		if schema == nil {
			return nil, fmt.Errorf("nev: extended header %d: %w", i, errs.ErrUnknownHeaderKind)
		}

		if err := schema.Decode(er); err != nil {
			return nil, fmt.Errorf("nev: extended header %d (%s): %w", i, tag, err)
		}

		if tag == "NEUEVWAV" && f.Basic.FileSpec.Less(format.Version{Major: 2, Minor: 3}) {
			eh.SpikeWidthSamples = waveformSamples21
		}

		f.Extended = append(f.Extended, eh)
		f.ExtendedByTag[tag] = append(f.ExtendedByTag[tag], eh)
	}

	return f, nil
}

// Close releases the backing file. Close is idempotent: calling it
// more than once returns the first error (or nil) without touching
// the OS file handle again, unlike the original single-call Python
// idiom.
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
