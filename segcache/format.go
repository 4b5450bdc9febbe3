package segcache

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/BlackrockNeurotech/go-utilities/compress"
	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/nsx"
)

// magic identifies a segcache sidecar file, read verbatim (not
// latin1-decoded) since this isn't a Blackrock on-disk format.
var magic = [4]byte{'S', 'G', 'C', '1'}

const formatVersion = 1

// header layout, little-endian throughout:
//
//	magic            [4]byte
//	version          uint8
//	compressionType  uint8
//	ptpConfirmed     uint8
//	sourceSize       uint64
//	sourceModTime    int64
//	payloadChecksum  uint64 (xxhash64 of the decompressed payload)
//	payloadLen       uint32 (compressed length)
//	payload          [payloadLen]byte
const headerLen = 4 + 1 + 1 + 1 + 8 + 8 + 8 + 4

func encode(e cacheEntry, compression format.CompressionType) ([]byte, error) {
	payload := encodeSegments(e.segments)

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	out := make([]byte, 0, headerLen+len(compressed))
	buf := bytes.NewBuffer(out)

	buf.Write(magic[:])
	buf.WriteByte(formatVersion)
	buf.WriteByte(byte(compression))
	buf.WriteByte(boolByte(e.ptpConfirmed))
	writeU64(buf, e.sourceSize)
	writeI64(buf, e.sourceModTime)
	writeU64(buf, xxhash.Sum64(payload))
	writeU32(buf, uint32(len(compressed)))
	buf.Write(compressed)

	return buf.Bytes(), nil
}

func decode(raw []byte) (cacheEntry, error) {
	if len(raw) < headerLen {
		return cacheEntry{}, fmt.Errorf("segcache: truncated header: %w", errs.ErrUnexpectedEOF)
	}

	if !bytes.Equal(raw[0:4], magic[:]) {
		return cacheEntry{}, fmt.Errorf("segcache: bad magic: %w", errs.ErrInvalidArgument)
	}

	if raw[4] != formatVersion {
		return cacheEntry{}, fmt.Errorf("segcache: unsupported version %d: %w", raw[4], errs.ErrInvalidArgument)
	}

	compression := format.CompressionType(raw[5])
	ptpConfirmed := raw[6] != 0
	sourceSize := binary.LittleEndian.Uint64(raw[7:15])
	sourceModTime := int64(binary.LittleEndian.Uint64(raw[15:23]))
	checksum := binary.LittleEndian.Uint64(raw[23:31])
	payloadLen := binary.LittleEndian.Uint32(raw[31:35])

	if uint32(len(raw)-headerLen) != payloadLen {
		return cacheEntry{}, fmt.Errorf("segcache: payload length mismatch: %w", errs.ErrUnexpectedEOF)
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return cacheEntry{}, err
	}

	payload, err := codec.Decompress(raw[headerLen:])
	if err != nil {
		return cacheEntry{}, fmt.Errorf("segcache: decompress payload: %w", err)
	}

	if xxhash.Sum64(payload) != checksum {
		return cacheEntry{}, fmt.Errorf("segcache: checksum mismatch: %w", errs.ErrInvariantViolation)
	}

	segments, err := decodeSegments(payload)
	if err != nil {
		return cacheEntry{}, err
	}

	return cacheEntry{
		sourceSize:    sourceSize,
		sourceModTime: sourceModTime,
		ptpConfirmed:  ptpConfirmed,
		segments:      segments,
	}, nil
}

// encodeSegments serializes the segment table as:
//
//	count               uint32
//	per segment:
//	  firstTimestamp    uint64
//	  numSamples        uint32
//	  byteOffsetToData  int64
//	  ptp               uint8
//	  if ptp:
//	    sampleCount     uint32
//	    samples         [sampleCount]uint64
func encodeSegments(segs []nsx.Segment) []byte {
	buf := new(bytes.Buffer)

	writeU32(buf, uint32(len(segs)))
	for _, seg := range segs {
		writeU64(buf, seg.FirstTimestamp)
		writeU32(buf, seg.NumSamples)
		writeI64(buf, seg.ByteOffsetToData)
		buf.WriteByte(boolByte(seg.PTP))

		if seg.PTP {
			writeU32(buf, uint32(len(seg.SampleTimestamps)))
			for _, ts := range seg.SampleTimestamps {
				writeU64(buf, ts)
			}
		}
	}

	return buf.Bytes()
}

func decodeSegments(payload []byte) ([]nsx.Segment, error) {
	r := bytes.NewReader(payload)

	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("segcache: segment count: %w", err)
	}

	segs := make([]nsx.Segment, count)
	for i := range segs {
		firstTS, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("segcache: segment %d timestamp: %w", i, err)
		}

		numSamples, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("segcache: segment %d num samples: %w", i, err)
		}

		offset, err := readI64(r)
		if err != nil {
			return nil, fmt.Errorf("segcache: segment %d offset: %w", i, err)
		}

		ptpByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("segcache: segment %d ptp flag: %w", i, err)
		}

		seg := nsx.Segment{
			FirstTimestamp:   firstTS,
			NumSamples:       numSamples,
			ByteOffsetToData: offset,
			PTP:              ptpByte != 0,
		}

		if seg.PTP {
			n, err := readU32(r)
			if err != nil {
				return nil, fmt.Errorf("segcache: segment %d sample count: %w", i, err)
			}

			ts := make([]uint64, n)
			for j := range ts {
				v, err := readU64(r)
				if err != nil {
					return nil, fmt.Errorf("segcache: segment %d sample %d: %w", i, j, err)
				}
				ts[j] = v
			}
			seg.SampleTimestamps = ts
		}

		segs[i] = seg
	}

	return segs, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) {
	writeU64(buf, uint64(v))
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI64(r *bytes.Reader) (int64, error) {
	v, err := readU64(r)
	return int64(v), err
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err == nil && n < len(b) {
		err = errs.ErrUnexpectedEOF
	}
	return n, err
}
