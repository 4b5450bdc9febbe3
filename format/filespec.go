// Package format defines the small, closed enumerations shared by the
// header decoder, the NEV/NSx decoders, and the subset writer: the
// file-spec revision dispatch enum, packet/channel classification
// enums, and the compression enum used by segcache.
package format

import "fmt"

// FileSpec identifies a recognized (major, minor) Blackrock file-format
// revision. Every per-version policy (timestamp width, header layout,
// segmentation rule) is chosen once from this enum at open time rather
// than compared against strings repeatedly.
type FileSpec uint8

const (
	// FileSpecUnknown is the zero value; never produced by a successful parse.
	FileSpecUnknown FileSpec = iota
	// FileSpecLegacy21 is NSx spec 2.1 (NEURALSG basic header, no extended headers).
	FileSpecLegacy21
	// FileSpecV22 is NSx/NEV spec 2.2 (NEURALCD/NEURALEV basic header, 32-bit timestamps).
	FileSpecV22
	// FileSpecV23 is spec 2.3 (same layout as 2.2, differs only in minor-version checks).
	FileSpecV23
	// FileSpecV30 is spec 3.0+ with multi-sample packets and 64-bit timestamps.
	FileSpecV30
	// FileSpecV3xPTP is spec 3.x with one PTP-timestamped sample per packet.
	FileSpecV3xPTP
)

func (s FileSpec) String() string {
	switch s {
	case FileSpecLegacy21:
		return "2.1"
	case FileSpecV22:
		return "2.2"
	case FileSpecV23:
		return "2.3"
	case FileSpecV30:
		return "3.0"
	case FileSpecV3xPTP:
		return "3.x-ptp"
	default:
		return "unknown"
	}
}

// Version is the raw (major, minor) pair read from a basic header's
// FileSpec field. It is ordered and comparable.
type Version struct {
	Major uint8
	Minor uint8
}

// String renders the version as "major.minor", matching the original
// decoder's `format_filespec` output.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v precedes other in (major, minor) order.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}

	return v.Minor < other.Minor
}

// ClassifyNSx chooses the dispatch enum for an NSx file from its raw
// version and whether the PTP one-sample-per-packet layout was
// confirmed by a full-file scan (see nsx.Open).
func ClassifyNSx(legacy bool, v Version, ptpConfirmed bool) FileSpec {
	switch {
	case legacy:
		return FileSpecLegacy21
	case v.Major >= 3 && ptpConfirmed:
		return FileSpecV3xPTP
	case v.Major >= 3:
		return FileSpecV30
	case v.Major == 2 && v.Minor >= 3:
		return FileSpecV23
	default:
		return FileSpecV22
	}
}

// TimestampWidth returns the byte width of the segment/packet
// timestamp field for the given spec.
func (s FileSpec) TimestampWidth() int {
	switch s {
	case FileSpecV30, FileSpecV3xPTP:
		return 8
	default:
		return 4
	}
}
