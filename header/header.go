// Package header implements the table-driven header decoder (spec
// section 4.2): every NEV/NSx header kind is described as an ordered
// list of named fields, each with a fixed byte width and a
// post-processing step that turns the raw read into a typed value.
// Unknown header kinds and truncated reads surface through errs.
package header

import (
	"fmt"

	"github.com/BlackrockNeurotech/go-utilities/bytecodec"
	"github.com/BlackrockNeurotech/go-utilities/errs"
)

// Field describes one member of a header: a name for diagnostics and
// a decode step that reads its bytes from r and stores the typed
// result into dst (a pointer field of the caller's header struct).
//
// Fields are listed in declaration order because NEV extended headers
// are retained for later indexed lookup (e.g. NEUEVWAV by electrode
// index) and order is part of the on-disk contract.
type Field struct {
	Name   string
	Decode func(r *bytecodec.Reader) error
}

// Schema is an ordered set of fields sharing one read pass over a
// byte source.
type Schema []Field

// Decode runs every field's Decode step against r in order, wrapping
// the first error with the failing field's name.
func (s Schema) Decode(r *bytecodec.Reader) error {
	for _, f := range s {
		if err := f.Decode(r); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}

	return nil
}

// ReadTag reads an 8-byte Latin-1 tag (an NEV extended-header packet
// id, truncated at the first NUL) used to select a Schema from a
// registry.
func ReadTag(r *bytecodec.Reader) (string, error) {
	return r.FixedLatin1(8)
}

// Lookup resolves tag to a Schema in registry, or ErrUnknownHeaderKind.
func Lookup(registry map[string]Schema, tag string) (Schema, error) {
	s, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("extended header tag %q: %w", tag, errs.ErrUnknownHeaderKind)
	}

	return s, nil
}
