package registry

import "github.com/meshcore/mesh/pkg/types"

// Kind distinguishes an Upsert (carries a value) from a Delete (does not).
type Kind uint8

const (
	Upsert Kind = iota
	Delete
)

// Entry is a single signed registry record.
type Entry[V any] struct {
	UUID       types.UUID
	ParentUUID types.UUID
	Kind       Kind
	Key        string
	Value      V
	PublicKey  []byte
	Signature  []byte
	Timestamp  types.RelTime
}

// Codec serializes and deserializes the value carried by an Upsert
// entry. The registry core never inspects V directly; every comparison
// and every wire encoding goes through Codec so the core stays
// value-type-agnostic.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// BytesCodec is the identity Codec for raw-bytes-valued registries.
type BytesCodec struct{}

// Encode implements Codec.
func (BytesCodec) Encode(v []byte) ([]byte, error) { return v, nil }

// Decode implements Codec.
func (BytesCodec) Decode(b []byte) ([]byte, error) { return b, nil }
