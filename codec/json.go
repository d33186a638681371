package codec

import "encoding/json"

// JSON encodes values as JSON text. A V that is (or holds) a string is written
// and read verbatim, never quoted.
// The zero value is ready to use.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	if s, ok := any(v).(string); ok {
		return []byte(s), nil
	}
	if isNil(v) {
		return nil, nil
	}
	return json.Marshal(v)
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if sp, ok := any(&v).(*string); ok {
		*sp = string(b)
		return v, nil
	}
	err := json.Unmarshal(b, &v)
	return v, err
}
