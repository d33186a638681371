package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOROptions select the encoding profile.
type CBOROptions struct {
	// Deterministic uses RFC 8949 Core Deterministic encoding so equal values
	// always produce equal bytes. Otherwise the smaller preferred encoding is used.
	Deterministic bool
	// RejectDuplicateKeys fails decoding of maps that repeat a key.
	RejectDuplicateKeys bool
}

// CBOR stores values as CBOR. Times are written as RFC3339Nano text so other
// readers of the same keys can parse them without CBOR tag support.
// Construct with NewCBOR or MustCBOR; the zero value is not usable.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](opts CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if opts.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	var do cbor.DecOptions
	if opts.RejectDuplicateKeys {
		do.DupMapKey = cbor.DupMapKeyEnforcedAPF
	}
	dm, err := do.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Meant for package-level vars.
func MustCBOR[V any](opts CBOROptions) CBOR[V] {
	c, err := NewCBOR[V](opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	if isNil(v) {
		return nil, nil
	}
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
