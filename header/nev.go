package header

import (
	"time"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/format"
)

// NevBasic is the 336-byte NEV basic header.
type NevBasic struct {
	FileTypeID           string
	FileSpec             format.Version
	AddFlags             uint16
	BytesInHeader        uint32
	BytesInDataPackets   uint32
	TimeStampResolution  uint32
	SampleTimeResolution uint32
	TimeOrigin           time.Time
	CreatingApplication  string
	Comment              string
	NumExtendedHeaders   uint32
}

// NevBasicSchema describes the NEV basic header field-by-field, in
// the order brpylib's nev_header_dict["basic"] reads them.
func NevBasicSchema(h *NevBasic) Schema {
	return Schema{
		{"FileTypeID", func(r *bytecodec.Reader) (err error) { h.FileTypeID, err = r.FixedLatin1(8); return }},
		{"FileSpec", func(r *bytecodec.Reader) (err error) { h.FileSpec, err = r.FileSpecVersion(); return }},
		{"AddFlags", func(r *bytecodec.Reader) (err error) { h.AddFlags, err = r.U16(); return }},
		{"BytesInHeader", func(r *bytecodec.Reader) (err error) { h.BytesInHeader, err = r.U32(); return }},
		{"BytesInDataPackets", func(r *bytecodec.Reader) (err error) { h.BytesInDataPackets, err = r.U32(); return }},
		{"TimeStampResolution", func(r *bytecodec.Reader) (err error) { h.TimeStampResolution, err = r.U32(); return }},
		{"SampleTimeResolution", func(r *bytecodec.Reader) (err error) { h.SampleTimeResolution, err = r.U32(); return }},
		{"TimeOrigin", func(r *bytecodec.Reader) (err error) { h.TimeOrigin, err = r.TimeOrigin(); return }},
		{"CreatingApplication", func(r *bytecodec.Reader) (err error) { h.CreatingApplication, err = r.FixedLatin1(32); return }},
		{"Comment", func(r *bytecodec.Reader) (err error) { h.Comment, err = r.FixedLatin1(256); return }},
		{"NumExtendedHeaders", func(r *bytecodec.Reader) (err error) { h.NumExtendedHeaders, err = r.U32(); return }},
	}
}

// NevExtHeader is a decoded NEV extended header: the 8-byte tag that
// selected its layout plus the typed fields for that layout. Only the
// fields relevant to the tag are populated; the rest keep zero values.
type NevExtHeader struct {
	PacketID string

	// ARRAYNME / ECOMMENT / CCOMMENT / MAPFILE
	Text string

	// NEUEVWAV
	ElectrodeID        uint16
	PhysicalConnector  uint8
	ConnectorPin       uint8
	DigitizationFactor uint16
	EnergyThreshold    uint16
	HighThreshold      int16
	LowThreshold       int16
	NumSortedUnits     uint8
	BytesPerWaveform   uint8
	SpikeWidthSamples  uint16

	// NEUEVLBL
	Label string

	// NEUEVFLT
	HighFreqCorner string
	HighFreqOrder  uint32
	HighFreqType   format.FilterType
	LowFreqCorner  string
	LowFreqOrder   uint32
	LowFreqType    format.FilterType

	// DIGLABEL
	Mode format.DigitalMode

	// NSASEXEV
	Frequency          uint16
	DigitalInputActive bool
	AnalogCh1Config    format.AnalogConfig
	AnalogCh1DetectVal int16
	AnalogCh2Config    format.AnalogConfig
	AnalogCh2DetectVal int16
	AnalogCh3Config    format.AnalogConfig
	AnalogCh3DetectVal int16
	AnalogCh4Config    format.AnalogConfig
	AnalogCh4DetectVal int16
	AnalogCh5Config    format.AnalogConfig
	AnalogCh5DetectVal int16

	// VIDEOSYN
	VideoSourceID uint16
	VideoSource   string
	FrameRate     float32

	// TRACKOBJ
	TrackableType format.TrackingObjectType
	TrackableID   uint32
}

func skip(r *bytecodec.Reader, n int) error {
	_, err := r.Bytes(n)
	return err
}

// NevExtSchema returns the field table for one NEV extended-header
// tag, or nil if tag is not recognized. Mirrors brpylib.py's
// nev_header_dict entries.
func NevExtSchema(tag string, h *NevExtHeader) Schema {
	r := func(name string, fn func(r *bytecodec.Reader) error) Field { return Field{name, fn} }

	switch tag {
	case "ARRAYNME", "ECOMMENT", "CCOMMENT", "MAPFILE":
		return Schema{r("Text", func(rd *bytecodec.Reader) (err error) { h.Text, err = rd.FixedLatin1(24); return })}
	case "NEUEVWAV":
		return Schema{
			r("ElectrodeID", func(rd *bytecodec.Reader) (err error) { h.ElectrodeID, err = rd.U16(); return }),
			r("PhysicalConnector", func(rd *bytecodec.Reader) (err error) { h.PhysicalConnector, err = rd.U8(); return }),
			r("ConnectorPin", func(rd *bytecodec.Reader) (err error) { h.ConnectorPin, err = rd.U8(); return }),
			r("DigitizationFactor", func(rd *bytecodec.Reader) (err error) { h.DigitizationFactor, err = rd.U16(); return }),
			r("EnergyThreshold", func(rd *bytecodec.Reader) (err error) { h.EnergyThreshold, err = rd.U16(); return }),
			r("HighThreshold", func(rd *bytecodec.Reader) (err error) { h.HighThreshold, err = rd.I16(); return }),
			r("LowThreshold", func(rd *bytecodec.Reader) (err error) { h.LowThreshold, err = rd.I16(); return }),
			r("NumSortedUnits", func(rd *bytecodec.Reader) (err error) { h.NumSortedUnits, err = rd.U8(); return }),
			r("BytesPerWaveform", func(rd *bytecodec.Reader) (err error) { h.BytesPerWaveform, err = rd.U8(); return }),
			r("SpikeWidthSamples", func(rd *bytecodec.Reader) (err error) { h.SpikeWidthSamples, err = rd.U16(); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 8) }),
		}
	case "NEUEVLBL":
		return Schema{
			r("ElectrodeID", func(rd *bytecodec.Reader) (err error) { h.ElectrodeID, err = rd.U16(); return }),
			r("Label", func(rd *bytecodec.Reader) (err error) { h.Label, err = rd.FixedLatin1(16); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 6) }),
		}
	case "NEUEVFLT":
		return Schema{
			r("ElectrodeID", func(rd *bytecodec.Reader) (err error) { h.ElectrodeID, err = rd.U16(); return }),
			r("HighFreqCorner", func(rd *bytecodec.Reader) (err error) { h.HighFreqCorner, err = rd.Freq(); return }),
			r("HighFreqOrder", func(rd *bytecodec.Reader) (err error) { h.HighFreqOrder, err = rd.U32(); return }),
			r("HighFreqType", func(rd *bytecodec.Reader) (err error) { h.HighFreqType, err = rd.FilterType(); return }),
			r("LowFreqCorner", func(rd *bytecodec.Reader) (err error) { h.LowFreqCorner, err = rd.Freq(); return }),
			r("LowFreqOrder", func(rd *bytecodec.Reader) (err error) { h.LowFreqOrder, err = rd.U32(); return }),
			r("LowFreqType", func(rd *bytecodec.Reader) (err error) { h.LowFreqType, err = rd.FilterType(); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 2) }),
		}
	case "DIGLABEL":
		return Schema{
			r("Label", func(rd *bytecodec.Reader) (err error) { h.Label, err = rd.FixedLatin1(16); return }),
			r("Mode", func(rd *bytecodec.Reader) (err error) { h.Mode, err = rd.DigitalMode(); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 7) }),
		}
	case "NSASEXEV":
		return Schema{
			r("Frequency", func(rd *bytecodec.Reader) (err error) { h.Frequency, err = rd.U16(); return }),
			r("DigitalInputConfig", func(rd *bytecodec.Reader) error {
				v, err := rd.U8()
				h.DigitalInputActive = v&0x01 != 0
				return err
			}),
			r("AnalogCh1Config", func(rd *bytecodec.Reader) (err error) { h.AnalogCh1Config, err = rd.AnalogConfig(); return }),
			r("AnalogCh1DetectVal", func(rd *bytecodec.Reader) (err error) { h.AnalogCh1DetectVal, err = rd.I16(); return }),
			r("AnalogCh2Config", func(rd *bytecodec.Reader) (err error) { h.AnalogCh2Config, err = rd.AnalogConfig(); return }),
			r("AnalogCh2DetectVal", func(rd *bytecodec.Reader) (err error) { h.AnalogCh2DetectVal, err = rd.I16(); return }),
			r("AnalogCh3Config", func(rd *bytecodec.Reader) (err error) { h.AnalogCh3Config, err = rd.AnalogConfig(); return }),
			r("AnalogCh3DetectVal", func(rd *bytecodec.Reader) (err error) { h.AnalogCh3DetectVal, err = rd.I16(); return }),
			r("AnalogCh4Config", func(rd *bytecodec.Reader) (err error) { h.AnalogCh4Config, err = rd.AnalogConfig(); return }),
			r("AnalogCh4DetectVal", func(rd *bytecodec.Reader) (err error) { h.AnalogCh4DetectVal, err = rd.I16(); return }),
			r("AnalogCh5Config", func(rd *bytecodec.Reader) (err error) { h.AnalogCh5Config, err = rd.AnalogConfig(); return }),
			r("AnalogCh5DetectVal", func(rd *bytecodec.Reader) (err error) { h.AnalogCh5DetectVal, err = rd.I16(); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 6) }),
		}
	case "VIDEOSYN":
		return Schema{
			r("VideoSourceID", func(rd *bytecodec.Reader) (err error) { h.VideoSourceID, err = rd.U16(); return }),
			r("VideoSource", func(rd *bytecodec.Reader) (err error) { h.VideoSource, err = rd.FixedLatin1(16); return }),
			r("FrameRate", func(rd *bytecodec.Reader) (err error) { h.FrameRate, err = rd.F32(); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 2) }),
		}
	case "TRACKOBJ":
		return Schema{
			r("TrackableType", func(rd *bytecodec.Reader) (err error) { h.TrackableType, err = rd.TrackingObjectType(); return }),
			r("TrackableID", func(rd *bytecodec.Reader) (err error) { h.TrackableID, err = rd.U32(); return }),
			r("VideoSource", func(rd *bytecodec.Reader) (err error) { h.VideoSource, err = rd.FixedLatin1(16); return }),
			r("EmptyBytes", func(rd *bytecodec.Reader) error { return skip(rd, 2) }),
		}
	default:
		return nil
	}
}
