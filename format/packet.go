package format

// PacketID is the raw discriminant at byte offset ts_size of an NEV
// event packet (section 3, "Event packet (NEV)").
type PacketID uint16

// Well-known, fixed PacketID values. NEURAL packets use the channel id
// itself (1..16384) as the discriminant; see ClassifyPacket.
const (
	PacketIDDigital       PacketID = 0
	PacketIDNeuralMin     PacketID = 1
	PacketIDNeuralMax     PacketID = 16384
	PacketIDConfiguration PacketID = 65531
	PacketIDButton        PacketID = 65532
	PacketIDTracking      PacketID = 65533
	PacketIDVideoSync     PacketID = 65534
	PacketIDComment       PacketID = 65535
)

// PacketClass is the classification of an NEV event packet derived
// from its PacketID.
type PacketClass uint8

const (
	PacketClassUnknown PacketClass = iota
	PacketClassNeural
	PacketClassDigital
	PacketClassComment
	PacketClassVideoSync
	PacketClassTracking
	PacketClassButton
	PacketClassConfiguration
)

func (c PacketClass) String() string {
	switch c {
	case PacketClassNeural:
		return "neural"
	case PacketClassDigital:
		return "digital"
	case PacketClassComment:
		return "comment"
	case PacketClassVideoSync:
		return "video_sync"
	case PacketClassTracking:
		return "tracking"
	case PacketClassButton:
		return "button"
	case PacketClassConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// ClassifyPacket maps a raw PacketID to its PacketClass.
func ClassifyPacket(id PacketID) PacketClass {
	switch {
	case id == PacketIDDigital:
		return PacketClassDigital
	case id >= PacketIDNeuralMin && id <= PacketIDNeuralMax:
		return PacketClassNeural
	case id == PacketIDComment:
		return PacketClassComment
	case id == PacketIDVideoSync:
		return PacketClassVideoSync
	case id == PacketIDTracking:
		return PacketClassTracking
	case id == PacketIDButton:
		return PacketClassButton
	case id == PacketIDConfiguration:
		return PacketClassConfiguration
	default:
		return PacketClassUnknown
	}
}

// CommentCharSet distinguishes text comments from region-of-interest
// (ROI) tracking events encoded in COMMENT packets (section 4.3,
// "Comment vs ROI tie-break").
type CommentCharSet uint8

const (
	CommentCharSetANSI CommentCharSet = 0
	CommentCharSetUTF  CommentCharSet = 1
	// CommentCharSetROI is the sentinel marking a packet as a NeuroMotive
	// region-of-interest event rather than free text.
	CommentCharSetROI CommentCharSet = 0xFF
)

func (c CommentCharSet) String() string {
	switch c {
	case CommentCharSetANSI:
		return "ANSI"
	case CommentCharSetUTF:
		return "UTF"
	case CommentCharSetROI:
		return "ROI"
	default:
		return "unknown"
	}
}

// FilterType is the enum decoded by the `filter_type` composite
// formatter (section 4.1).
type FilterType uint16

const (
	FilterTypeNone        FilterType = 0
	FilterTypeButterworth FilterType = 1
)

func (f FilterType) String() string {
	switch f {
	case FilterTypeNone:
		return "none"
	case FilterTypeButterworth:
		return "butterworth"
	default:
		return "unknown"
	}
}

// DigitalMode is the enum decoded by the `digital_mode` composite
// formatter.
type DigitalMode uint8

const (
	DigitalModeSerial   DigitalMode = 0
	DigitalModeParallel DigitalMode = 1
)

func (m DigitalMode) String() string {
	if m == DigitalModeSerial {
		return "serial"
	}

	return "parallel"
}

// AnalogConfig is the enum decoded by the `analog_config` composite
// formatter: bit 0 low-to-high, bit 1 high-to-low, else none.
type AnalogConfig uint8

const (
	AnalogConfigNone      AnalogConfig = 0
	AnalogConfigLowToHigh AnalogConfig = 1 << 0
	AnalogConfigHighToLow AnalogConfig = 1 << 1
)

func (a AnalogConfig) String() string {
	switch {
	case a&AnalogConfigLowToHigh != 0:
		return "low_to_high"
	case a&AnalogConfigHighToLow != 0:
		return "high_to_low"
	default:
		return "none"
	}
}

// TrackingObjectType is the enum decoded by the `tracking_object_type`
// composite formatter.
type TrackingObjectType uint16

const (
	TrackingObjectUndefined   TrackingObjectType = 0
	TrackingObject2DRBMarkers TrackingObjectType = 1
	TrackingObject2DRBBlob    TrackingObjectType = 2
	TrackingObject3DRBMarkers TrackingObjectType = 3
	TrackingObject2DBoundary  TrackingObjectType = 4
	TrackingObjectMarkerSize  TrackingObjectType = 5
)

func (t TrackingObjectType) String() string {
	switch t {
	case TrackingObjectUndefined:
		return "undefined"
	case TrackingObject2DRBMarkers:
		return "2D RB markers"
	case TrackingObject2DRBBlob:
		return "2D RB blob"
	case TrackingObject3DRBMarkers:
		return "3D RB markers"
	case TrackingObject2DBoundary:
		return "2D boundary"
	case TrackingObjectMarkerSize:
		return "marker size"
	default:
		return "error"
	}
}
