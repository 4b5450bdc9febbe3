package nev

import (
	"encoding/binary"
	"fmt"

	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/internal/chanset"
)

// roiSentinel marks a COMMENT packet as a NeuroMotive region-of-
// interest event rather than free text.
const roiSentinel = format.CommentCharSet(0xFF)

// Extract performs one bulk pass over every event packet following
// the header, classifying each by PacketID and appending it to the
// matching Result slice.
func (f *File) Extract(opts ...ExtractOption) (*Result, error) {
	cfg := newExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	wideChannels := make([]uint32, len(cfg.channels))
	for i, id := range cfg.channels {
		wideChannels[i] = uint32(id)
	}
	channels := chanset.New(wideChannels)

	stride := int(f.Basic.BytesInDataPackets)

	size := f.ra.Len()
	headerLen := int(f.Basic.BytesInHeader)
	n := (size - headerLen) / stride

	raw := make([]byte, size-headerLen)
	if n > 0 {
		if _, err := f.ra.ReadAt(raw, int64(headerLen)); err != nil {
			return nil, fmt.Errorf("nev: bulk read: %w", err)
		}
	}

	res := &Result{}

	for i := 0; i < n; i++ {
		pkt := raw[i*stride : (i+1)*stride]

		var ts uint64
		if f.tsBytes == 8 {
			ts = binary.LittleEndian.Uint64(pkt[0:8])
		} else {
			ts = uint64(binary.LittleEndian.Uint32(pkt[0:4]))
		}

		pid := format.PacketID(binary.LittleEndian.Uint16(pkt[f.tsBytes : f.tsBytes+2]))
		at := func(n int) int { return f.tsBytes + n }

		switch format.ClassifyPacket(pid) {
		case format.PacketClassNeural:
			channel := uint16(pid)
			if !channels.Has(uint32(channel)) {
				continue
			}

			ev := NeuralEvent{
				TimeStamp: ts,
				Channel:   channel,
				Unit:      pkt[at(2)],
			}

			if cfg.readWaveforms {
				nSamples := (stride - f.tsBytes - 4) / 2
				wf := make([]int16, nSamples)
				for j := 0; j < nSamples; j++ {
					wf[j] = int16(binary.LittleEndian.Uint16(pkt[at(4)+2*j : at(4)+2*j+2]))
				}
				ev.Waveform = wf
			}

			res.Neural = append(res.Neural, ev)

		case format.PacketClassDigital:
			res.Digital = append(res.Digital, DigitalEvent{
				TimeStamp:       ts,
				InsertionReason: pkt[at(2)],
				UnparsedData:    binary.LittleEndian.Uint32(pkt[at(4) : at(4)+4]),
			})

		case format.PacketClassComment:
			charSet := format.CommentCharSet(pkt[at(2)])
			tsStarted := binary.LittleEndian.Uint32(pkt[at(4) : at(4)+4])
			textLen := stride - f.tsBytes - 10
			text := latin1Strip(pkt[at(8) : at(8)+textLen])

			if charSet == roiSentinel {
				res.ROI = append(res.ROI, parseROI(ts, text))
				continue
			}

			res.Comments = append(res.Comments, CommentEvent{
				TimeStamp:        ts,
				TimeStampStarted: tsStarted,
				CharSet:          charSet,
				Text:             text,
			})

		case format.PacketClassVideoSync:
			res.VideoSync = append(res.VideoSync, VideoSyncEvent{
				TimeStamp:     ts,
				FileNumber:    binary.LittleEndian.Uint16(pkt[at(2) : at(2)+2]),
				FrameNumber:   binary.LittleEndian.Uint32(pkt[at(4) : at(4)+4]),
				ElapsedTimeMs: binary.LittleEndian.Uint32(pkt[at(8) : at(8)+4]),
				SourceID:      binary.LittleEndian.Uint32(pkt[at(12) : at(12)+4]),
			})

		case format.PacketClassTracking:
			res.Tracking = append(res.Tracking, TrackingEvent{
				TimeStamp:   ts,
				ParentID:    binary.LittleEndian.Uint16(pkt[at(2) : at(2)+2]),
				NodeID:      binary.LittleEndian.Uint16(pkt[at(4) : at(4)+2]),
				NodeCount:   binary.LittleEndian.Uint16(pkt[at(6) : at(6)+2]),
				MarkerCount: binary.LittleEndian.Uint16(pkt[at(8) : at(8)+2]),
				X:           binary.LittleEndian.Uint16(pkt[at(10) : at(10)+2]),
				Y:           binary.LittleEndian.Uint16(pkt[at(12) : at(12)+2]),
			})

		case format.PacketClassButton:
			res.Button = append(res.Button, ButtonEvent{
				TimeStamp:   ts,
				TriggerType: binary.LittleEndian.Uint16(pkt[at(2) : at(2)+2]),
			})

		case format.PacketClassConfiguration:
			res.Configuration = append(res.Configuration, ConfigurationEvent{
				TimeStamp:  ts,
				ChangeType: binary.LittleEndian.Uint16(pkt[at(2) : at(2)+2]),
			})
		}
	}

	return res, nil
}

// latin1Strip decodes raw Latin-1 bytes to a string with embedded
// NUL bytes removed (not just truncated at the first one, since a
// comment packet's payload is a sentinel-joined batch of strings
// where interior NULs are padding within each original string).
func latin1Strip(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if c == 0x00 {
			continue
		}
		runes = append(runes, rune(c))
	}

	return string(runes)
}

// parseROI decodes a NeuroMotive region-of-interest COMMENT payload
// as five colon-separated fields. The trailing reserved field is
// discarded.
func parseROI(ts uint64, text string) ROIEvent {
	fields := splitN(text, ':', 5)

	ev := ROIEvent{TimeStamp: ts}
	if len(fields) > 0 {
		ev.ROIName = fields[0]
	}
	if len(fields) > 1 {
		ev.ROINumber = fields[1]
	}
	if len(fields) > 2 {
		ev.Event = fields[2]
	}
	if len(fields) > 3 {
		ev.Frame = fields[3]
	}

	return ev
}

func splitN(s string, sep byte, n int) []string {
	out := make([]string, 0, n)
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
