package bytecodec

import (
	"fmt"
	"time"

	"github.com/BlackrockNeurotech/go-utilities/errs"
	"github.com/BlackrockNeurotech/go-utilities/format"
)

// FileSpecVersion reads the two-byte (major, minor) FileSpec pair
// found at the start of every basic header.
func (r *Reader) FileSpecVersion() (format.Version, error) {
	major, err := r.U8()
	if err != nil {
		return format.Version{}, err
	}

	minor, err := r.U8()
	if err != nil {
		return format.Version{}, err
	}

	return format.Version{Major: major, Minor: minor}, nil
}

// TimeOrigin reads the eight-field Windows SYSTEMTIME-shaped timestamp
// (year, month, day-of-week, day, hour, minute, second, millisecond)
// used by both NEV and NSx basic headers. The day-of-week field is
// read and discarded, matching brpylib.py's `format_timeorigin`.
func (r *Reader) TimeOrigin() (time.Time, error) {
	year, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	month, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	if _, err := r.U16(); err != nil { // day of week, unused
		return time.Time{}, err
	}

	day, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	hour, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	minute, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	second, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	milli, err := r.U16()
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second),
		int(milli)*int(time.Millisecond), time.UTC), nil
}

// FilterType reads the two-byte filter-type enum used by NEV extended
// headers (NEUEVFLT).
func (r *Reader) FilterType() (format.FilterType, error) {
	v, err := r.U16()
	if err != nil {
		return 0, err
	}

	return format.FilterType(v), nil
}

// DigitalMode reads the one-byte digital-mode enum used by the
// DIGLABEL extended header.
func (r *Reader) DigitalMode() (format.DigitalMode, error) {
	v, err := r.U8()
	if err != nil {
		return 0, err
	}

	return format.DigitalMode(v), nil
}

// AnalogConfig reads the one-byte analog-trigger-edge bitmask used by
// the NSASEXEV extended header.
func (r *Reader) AnalogConfig() (format.AnalogConfig, error) {
	v, err := r.U8()
	if err != nil {
		return 0, err
	}

	return format.AnalogConfig(v), nil
}

// TrackingObjectType reads the two-byte tracking-object enum used by
// the TRACKOBJ extended header.
func (r *Reader) TrackingObjectType() (format.TrackingObjectType, error) {
	v, err := r.U16()
	if err != nil {
		return 0, err
	}

	return format.TrackingObjectType(v), nil
}

// Freq reads a four-byte corner-frequency field and renders it in
// millihertz-to-hertz form, matching brpylib.py's `format_freq`
// (e.g. a raw value of 500 becomes "0.5 Hz").
func (r *Reader) Freq() (string, error) {
	v, err := r.U32()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v Hz", float64(v)/1000), nil
}

// RequireKnown returns ErrUnknownHeaderKind wrapped with ctx if ok is
// false. Header tables use this to reject an extended-header tag that
// doesn't match any of the enumerated formatters.
func RequireKnown(ok bool, ctx string) error {
	if ok {
		return nil
	}

	return fmt.Errorf("%s: %w", ctx, errs.ErrUnknownHeaderKind)
}
