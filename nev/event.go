package nev

import "github.com/BlackrockNeurotech/go-utilities/format"

// NeuralEvent is one spike/analog sample packet (PacketID 1..16384).
type NeuralEvent struct {
	TimeStamp uint64
	Channel   uint16
	Unit      uint8
	// Waveform is nil unless waveforms were requested via WithWaveforms.
	Waveform []int16
}

// DigitalEvent is one DIGITAL (PacketID 0) packet.
type DigitalEvent struct {
	TimeStamp       uint64
	InsertionReason uint8
	UnparsedData    uint32
}

// CommentEvent is one free-text COMMENT packet (CharSet != ROI sentinel).
type CommentEvent struct {
	TimeStamp        uint64
	TimeStampStarted uint32
	CharSet          format.CommentCharSet
	Text             string
}

// ROIEvent is one NeuroMotive region-of-interest event, decoded from a
// COMMENT packet whose CharSet equals the ROI sentinel.
type ROIEvent struct {
	TimeStamp uint64
	ROIName   string
	ROINumber string
	Event     string
	Frame     string
}

// VideoSyncEvent is one VIDEO_SYNC packet.
type VideoSyncEvent struct {
	TimeStamp     uint64
	FileNumber    uint16
	FrameNumber   uint32
	ElapsedTimeMs uint32
	SourceID      uint32
}

// TrackingEvent is one TRACKING packet: a NeuroMotive object-tracking
// update. X/Y carry the lead body point only — the fixed packet width
// has room for one (x, y) pair regardless of MarkerCount, matching the
// original decoder's column layout.
type TrackingEvent struct {
	TimeStamp   uint64
	ParentID    uint16
	NodeID      uint16
	NodeCount   uint16
	MarkerCount uint16
	X           uint16
	Y           uint16
}

// ButtonEvent is one BUTTON packet.
type ButtonEvent struct {
	TimeStamp   uint64
	TriggerType uint16
}

// ConfigurationEvent is one CONFIGURATION packet.
type ConfigurationEvent struct {
	TimeStamp  uint64
	ChangeType uint16
}

// Result is the bulk-extract output: one slice per packet class, plus
// any non-fatal coercion warnings.
type Result struct {
	Neural        []NeuralEvent
	Digital       []DigitalEvent
	Comments      []CommentEvent
	ROI           []ROIEvent
	VideoSync     []VideoSyncEvent
	Tracking      []TrackingEvent
	Button        []ButtonEvent
	Configuration []ConfigurationEvent
	Warnings      []string
}
