package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR serializes values with fxamacker/cbor. Construct it with NewCBOR or
// MustCBOR; the zero value has no modes and panics on use.
//
// With deterministic set, encoding follows RFC 8949 Core Deterministic rules
// so equal values give equal bytes. Times are always RFC3339Nano strings.
// Decoding rejects duplicate map keys, since a second tier may be shared and
// a payload that fails that check is dropped on read.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	var (
		out CBOR[V]
		err error
	)
	if out.enc, err = eo.EncMode(); err != nil {
		return CBOR[V]{}, err
	}
	do := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}
	if out.dec, err = do.DecMode(); err != nil {
		return CBOR[V]{}, err
	}
	return out, nil
}

// MustCBOR panics where NewCBOR would fail. For package-level codecs.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}
