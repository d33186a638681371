// Package codec converts cache values to and from the bytes kept in a store.
//
// Strings never go through a structured encoding: both String and JSON store a
// string value verbatim, so a value written by one process as plain text can be
// read back by any other process that treats the key as text.
package codec

// Codec encodes/decodes values V to []byte for storage.
//
// Encode may return (nil, nil) to signal "nothing to store"; the cache treats
// that as a no-op write rather than an error.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
