// Package segcache persists the segment table discovered by nsx.Open
// to a sidecar file so repeat opens of a large file-spec>=3.0 PTP
// recording can skip discoverPTPOrMultiSample's full-file scan. A
// multi-gigabyte PTP file's fixed-record scan otherwise reruns on
// every Open.
//
// A cache entry is keyed by the source file's size and modification
// time. Anything else — a missing sidecar, a key mismatch, a corrupt
// payload, an unreadable compression type — is treated as a plain
// cache miss, never as an error: the caller always falls back to
// nsx.Open's ordinary full scan.
package segcache

import (
	"fmt"
	"os"

	"github.com/BlackrockNeurotech/go-utilities/format"
	"github.com/BlackrockNeurotech/go-utilities/nsx"
)

// Suffix is appended to the source path to name its sidecar cache file.
const Suffix = ".segcache"

// Config controls how a cache entry is written.
type Config struct {
	compression format.CompressionType
}

// Option configures Store.
type Option func(*Config)

// WithCompression selects the codec used to store the segment table.
// The default is format.CompressionZstd.
func WithCompression(t format.CompressionType) Option {
	return func(c *Config) { c.compression = t }
}

func newConfig() Config {
	return Config{compression: format.CompressionZstd}
}

// Path returns the sidecar cache path for a source file path.
func Path(srcPath string) string {
	return srcPath + Suffix
}

// Load reads the sidecar cache for srcPath and validates it against
// the file's current size and modification time. It returns a nil
// seed (and a nil error) for any miss: no sidecar, a stat failure, a
// stale key, a bad magic/version, or a checksum mismatch. Only an
// error reading srcPath's own stat is surfaced, since the caller
// needs that to proceed at all.
func Load(srcPath string) (*nsx.CacheSeed, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("segcache: stat %q: %w", srcPath, err)
	}

	raw, err := os.ReadFile(Path(srcPath))
	if err != nil {
		return nil, nil //nolint:nilerr // missing sidecar is a cache miss, not an error
	}

	entry, err := decode(raw)
	if err != nil {
		return nil, nil //nolint:nilerr // corrupt sidecar is a cache miss, not an error
	}

	if entry.sourceSize != uint64(info.Size()) || entry.sourceModTime != info.ModTime().UnixNano() {
		return nil, nil
	}

	return &nsx.CacheSeed{
		PTPConfirmed: entry.ptpConfirmed,
		Segments:     entry.segments,
	}, nil
}

// Store discovers and writes a fresh sidecar cache for srcPath,
// reading f's already-discovered segments rather than rescanning.
func Store(srcPath string, f *nsx.File, opts ...Option) error {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("segcache: stat %q: %w", srcPath, err)
	}

	entry := cacheEntry{
		sourceSize:    uint64(info.Size()),
		sourceModTime: info.ModTime().UnixNano(),
		ptpConfirmed:  f.Spec == format.FileSpecV3xPTP,
		segments:      f.Segments,
	}

	raw, err := encode(entry, cfg.compression)
	if err != nil {
		return fmt.Errorf("segcache: encode: %w", err)
	}

	tmp := Path(srcPath) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("segcache: write %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, Path(srcPath)); err != nil {
		return fmt.Errorf("segcache: rename %q: %w", tmp, err)
	}

	return nil
}

// Open opens srcPath through nsx.OpenSeeded using whatever cache entry
// Load finds (or a full scan on a miss), then refreshes the sidecar so
// the next Open is cheap. Refresh failures are not fatal: a caller that
// can read the file shouldn't fail just because its cache directory
// became unwritable.
func Open(srcPath string, opts ...Option) (*nsx.File, error) {
	seed, err := Load(srcPath)
	if err != nil {
		return nil, err
	}

	f, err := nsx.OpenSeeded(srcPath, seed)
	if err != nil {
		return nil, err
	}

	_ = Store(srcPath, f, opts...)

	return f, nil
}

// Invalidate removes srcPath's sidecar cache, if any. A missing
// sidecar is not an error.
func Invalidate(srcPath string) error {
	err := os.Remove(Path(srcPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("segcache: remove %q: %w", Path(srcPath), err)
	}

	return nil
}

// cacheEntry is the in-memory form of a decoded sidecar.
type cacheEntry struct {
	sourceSize    uint64
	sourceModTime int64
	ptpConfirmed  bool
	segments      []nsx.Segment
}
