package codec

import "google.golang.org/protobuf/proto"

// Protobuf stores proto messages in binary wire format. The zero value is
// ready to use; T must be a generated message pointer such as *pb.User.
type Protobuf[T proto.Message] struct {
	// Deterministic orders map entries so equal messages give equal bytes.
	Deterministic bool
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	if isNil(v) {
		return nil, nil
	}
	return proto.MarshalOptions{Deterministic: c.Deterministic}.Marshal(v)
}

// Decode ignores fields unknown to T so older readers keep working after a
// schema change.
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	var zero T
	m := zero.ProtoReflect().Type().New().Interface().(T)
	err := proto.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(b, m)
	return m, err
}
