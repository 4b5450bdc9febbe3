package nev

// ExtractOption configures a bulk Extract call using the
// functional-options pattern.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	channels      []uint16
	readWaveforms bool
}

func newExtractConfig() extractConfig {
	return extractConfig{readWaveforms: true}
}

// WithChannels restricts NEURAL-class output to the given channel
// ids. An empty or omitted allow-list means every channel.
func WithChannels(ids []uint16) ExtractOption {
	return func(c *extractConfig) { c.channels = ids }
}

// WithWaveforms controls whether spike waveforms are materialized
// (default true). Pass false to skip the waveform slice entirely when
// only spike timestamps and classification are needed.
func WithWaveforms(read bool) ExtractOption {
	return func(c *extractConfig) { c.readWaveforms = read }
}
