package registry

import "encoding/json"

// JSONCodec serializes structured values with encoding/json. This is the
// one ambient stdlib dependency in the registry package: no third-party
// JSON library appears anywhere in the example corpus, so there is no
// ecosystem convention to follow instead.
type JSONCodec[V any] struct{}

// Encode implements Codec.
func (JSONCodec[V]) Encode(v V) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Codec.
func (JSONCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
