// Package snapshot encodes and decodes diagnostic snapshots with CBOR. It
// is a thin wrapper so callers (the device package's DumpSnapshot and
// LoadSnapshot, behind the -dump-on-exit and -load-snapshot CLI flags)
// never import the CBOR library directly.
package snapshot

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Encode writes v to w as CBOR.
func Encode(w io.Writer, v any) error {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	return enc.NewEncoder(w).Encode(v)
}

// Decode reads a CBOR value from r into v.
func Decode(r io.Reader, v any) error {
	return cbor.NewDecoder(r).Decode(v)
}
