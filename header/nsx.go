package header

import (
	"time"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/format"
)

// NsxLegacyBasic is the 32-byte file-spec-2.1 "NEURALSG" basic header:
// the 8-byte FileTypeID (consumed before this schema runs), then
// Label (16), Period (4), ChannelCount (4). FileSpec, TimeOrigin, and
// BytesInHeader are not present on disk for this layout; nsx.Open
// synthesizes them.
type NsxLegacyBasic struct {
	Label        string
	Period       uint32
	ChannelCount uint32
}

func NsxLegacyBasicSchema(h *NsxLegacyBasic) Schema {
	return Schema{
		{"Label", func(r *bytecodec.Reader) (err error) { h.Label, err = r.FixedLatin1(16); return }},
		{"Period", func(r *bytecodec.Reader) (err error) { h.Period, err = r.U32(); return }},
		{"ChannelCount", func(r *bytecodec.Reader) (err error) { h.ChannelCount, err = r.U32(); return }},
	}
}

// NsxBasic is the spec-2.2+ "NEURALCD" basic header (314 bytes total
// including the eight leading FileTypeID bytes consumed before this
// schema runs).
type NsxBasic struct {
	FileSpec            format.Version
	BytesInHeader       uint32
	Label               string
	Comment             string
	Period              uint32
	TimeStampResolution uint32
	TimeOrigin          time.Time
	ChannelCount        uint32
}

func NsxBasicSchema(h *NsxBasic) Schema {
	return Schema{
		{"FileSpec", func(r *bytecodec.Reader) (err error) { h.FileSpec, err = r.FileSpecVersion(); return }},
		{"BytesInHeader", func(r *bytecodec.Reader) (err error) { h.BytesInHeader, err = r.U32(); return }},
		{"Label", func(r *bytecodec.Reader) (err error) { h.Label, err = r.FixedLatin1(16); return }},
		{"Comment", func(r *bytecodec.Reader) (err error) { h.Comment, err = r.FixedLatin1(256); return }},
		{"Period", func(r *bytecodec.Reader) (err error) { h.Period, err = r.U32(); return }},
		{"TimeStampResolution", func(r *bytecodec.Reader) (err error) { h.TimeStampResolution, err = r.U32(); return }},
		{"TimeOrigin", func(r *bytecodec.Reader) (err error) { h.TimeOrigin, err = r.TimeOrigin(); return }},
		{"ChannelCount", func(r *bytecodec.Reader) (err error) { h.ChannelCount, err = r.U32(); return }},
	}
}

// NsxExtended is the 66-byte per-channel extended header (spec
// section 6): "CC" type tag, electrode identity/label, connector
// routing, digital/analog conversion bounds, units, and two filter
// descriptors.
type NsxExtended struct {
	Type              string
	ElectrodeID       uint16
	ElectrodeLabel    string
	PhysicalConnector uint8
	ConnectorPin      uint8
	MinDigitalValue   int16
	MaxDigitalValue   int16
	MinAnalogValue    int16
	MaxAnalogValue    int16
	Units             string
	HighFreqCorner    string
	HighFreqOrder     uint32
	HighFreqType      format.FilterType
	LowFreqCorner     string
	LowFreqOrder      uint32
	LowFreqType       format.FilterType
}

func NsxExtendedSchema(h *NsxExtended) Schema {
	return Schema{
		{"Type", func(r *bytecodec.Reader) (err error) { h.Type, err = r.FixedLatin1(2); return }},
		{"ElectrodeID", func(r *bytecodec.Reader) (err error) { h.ElectrodeID, err = r.U16(); return }},
		{"ElectrodeLabel", func(r *bytecodec.Reader) (err error) { h.ElectrodeLabel, err = r.FixedLatin1(16); return }},
		{"PhysicalConnector", func(r *bytecodec.Reader) (err error) { h.PhysicalConnector, err = r.U8(); return }},
		{"ConnectorPin", func(r *bytecodec.Reader) (err error) { h.ConnectorPin, err = r.U8(); return }},
		{"MinDigitalValue", func(r *bytecodec.Reader) (err error) { h.MinDigitalValue, err = r.I16(); return }},
		{"MaxDigitalValue", func(r *bytecodec.Reader) (err error) { h.MaxDigitalValue, err = r.I16(); return }},
		{"MinAnalogValue", func(r *bytecodec.Reader) (err error) { h.MinAnalogValue, err = r.I16(); return }},
		{"MaxAnalogValue", func(r *bytecodec.Reader) (err error) { h.MaxAnalogValue, err = r.I16(); return }},
		{"Units", func(r *bytecodec.Reader) (err error) { h.Units, err = r.FixedLatin1(16); return }},
		{"HighFreqCorner", func(r *bytecodec.Reader) (err error) { h.HighFreqCorner, err = r.Freq(); return }},
		{"HighFreqOrder", func(r *bytecodec.Reader) (err error) { h.HighFreqOrder, err = r.U32(); return }},
		{"HighFreqType", func(r *bytecodec.Reader) (err error) { h.HighFreqType, err = r.FilterType(); return }},
		{"LowFreqCorner", func(r *bytecodec.Reader) (err error) { h.LowFreqCorner, err = r.Freq(); return }},
		{"LowFreqOrder", func(r *bytecodec.Reader) (err error) { h.LowFreqOrder, err = r.U32(); return }},
		{"LowFreqType", func(r *bytecodec.Reader) (err error) { h.LowFreqType, err = r.FilterType(); return }},
	}
}

// NsxSegmentHeader is the per-packet "data" header preceding each run
// of continuous samples: a one-byte reserved/marker field, a
// timestamp (4 bytes for spec <3.0, 8 bytes for spec >=3.0), and a
// 4-byte sample count.
type NsxSegmentHeader struct {
	Reserved      uint8
	Timestamp     uint64
	NumDataPoints uint32
}

// NsxSegmentHeaderSchema reads the reserved byte, a timestamp of the
// given width (4 or 8 bytes, see format.FileSpec.TimestampWidth), and
// the sample count.
func NsxSegmentHeaderSchema(h *NsxSegmentHeader, timestampWidth int) Schema {
	readTimestamp := func(r *bytecodec.Reader) error {
		if timestampWidth == 8 {
			v, err := r.U64()
			h.Timestamp = v
			return err
		}

		v, err := r.U32()
		h.Timestamp = uint64(v)
		return err
	}

	return Schema{
		{"Reserved", func(r *bytecodec.Reader) (err error) { h.Reserved, err = r.U8(); return }},
		{"Timestamp", readTimestamp},
		{"NumDataPoints", func(r *bytecodec.Reader) (err error) { h.NumDataPoints, err = r.U32(); return }},
	}
}
