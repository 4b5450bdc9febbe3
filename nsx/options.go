package nsx

// ExtractOption configures Extract using the functional-options
// pattern: each option mutates an extractConfig built from defaults.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	channels       []uint32
	startTimeS     float64
	dataTimeS      float64
	hasDataTimeS   bool
	downsample     int
	zeropad        bool
	fullTimestamps bool
	elecRows       bool
	forceSrate     bool
}

func newExtractConfig() extractConfig {
	return extractConfig{downsample: 1, elecRows: true}
}

// WithChannels restricts extraction to the given electrode ids. An
// empty allow-list means every channel.
func WithChannels(ids []uint32) ExtractOption {
	return func(c *extractConfig) { c.channels = ids }
}

// WithStartTimeS sets the window start, in seconds from the first
// segment's first timestamp. Negative values are coerced to 0.
func WithStartTimeS(s float64) ExtractOption {
	return func(c *extractConfig) { c.startTimeS = s }
}

// WithDataTimeS sets the window duration, in seconds. Negative values
// are coerced to "all" (the default).
func WithDataTimeS(s float64) ExtractOption {
	return func(c *extractConfig) { c.dataTimeS = s; c.hasDataTimeS = true }
}

// WithDownsample sets the naive decimation factor (deprecated,
// performs no anti-aliasing). Values below 1 are coerced to 1.
func WithDownsample(n int) ExtractOption {
	return func(c *extractConfig) { c.downsample = n }
}

// WithZeropad prepends zero samples so the first surviving segment's
// first timestamp is 0. Ignored with a warning on PTP data.
func WithZeropad(v bool) ExtractOption {
	return func(c *extractConfig) { c.zeropad = v }
}

// WithFullTimestamps keeps every sample's timestamp instead of
// collapsing each segment's vector to its first element.
func WithFullTimestamps(v bool) ExtractOption {
	return func(c *extractConfig) { c.fullTimestamps = v }
}

// WithElecRows selects (channels, samples) output shape when true
// (the default) or (samples, channels) when false.
func WithElecRows(v bool) ExtractOption {
	return func(c *extractConfig) { c.elecRows = v }
}

// WithForceSrate forces each segment to the exact sample count implied
// by its elapsed PTP duration, inserting or deleting interpolated
// samples as needed. Ignored with a warning on non-PTP data.
func WithForceSrate(v bool) ExtractOption {
	return func(c *extractConfig) { c.forceSrate = v }
}
