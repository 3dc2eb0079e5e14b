// Package codec converts cache values to and from bytes for byte-oriented
// second tiers (see package tiered).
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
