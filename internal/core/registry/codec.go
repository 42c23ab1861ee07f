package registry

import (
	"encoding/binary"
	"fmt"

	"github.com/meshcore/mesh/pkg/types"
)

// signedBytes returns the byte sequence a registry entry's signature
// covers: every field except the signature itself. Value is encoded
// through the registry's Codec first, since the core never assumes a
// concrete V.
func signedBytes[V any](e Entry[V], codec Codec[V]) ([]byte, error) {
	valueBytes, err := codec.Encode(e.Value)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 64+len(e.Key)+len(valueBytes)+len(e.PublicKey))
	buf = append(buf, e.UUID[:]...)
	buf = append(buf, e.ParentUUID[:]...)
	buf = append(buf, byte(e.Kind))
	buf = appendBytes(buf, []byte(e.Key))
	buf = appendBytes(buf, valueBytes)
	buf = appendBytes(buf, e.PublicKey)
	buf = appendUint64(buf, uint64(e.Timestamp))
	return buf, nil
}

// encodeEntry serializes a full entry, signature included, for
// anti-entropy transport and local persistence.
func encodeEntry[V any](e Entry[V], codec Codec[V]) ([]byte, error) {
	body, err := signedBytes(e, codec)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(body)+8+len(e.Signature))
	buf = append(buf, body...)
	buf = appendBytes(buf, e.Signature)
	return buf, nil
}

// decodeEntry is the inverse of encodeEntry.
func decodeEntry[V any](data []byte, codec Codec[V]) (Entry[V], error) {
	var e Entry[V]

	uuidBytes, rest, err := readFixed(data, types.UUIDSize)
	if err != nil {
		return e, ErrParsingError
	}
	uid, ok := types.UUIDFromBytes(uuidBytes)
	if !ok {
		return e, ErrParsingError
	}
	e.UUID = uid

	parentBytes, rest2, err := readFixed(rest, types.UUIDSize)
	if err != nil {
		return e, ErrParsingError
	}
	parentUID, ok := types.UUIDFromBytes(parentBytes)
	if !ok {
		return e, ErrParsingError
	}
	e.ParentUUID = parentUID

	kindBytes, rest3, err := readFixed(rest2, 1)
	if err != nil {
		return e, ErrParsingError
	}
	e.Kind = Kind(kindBytes[0])

	keyBytes, rest4, err := readBytes(rest3)
	if err != nil {
		return e, ErrParsingError
	}
	e.Key = string(keyBytes)

	valueBytes, rest5, err := readBytes(rest4)
	if err != nil {
		return e, ErrParsingError
	}
	e.Value, err = codec.Decode(valueBytes)
	if err != nil {
		return e, fmt.Errorf("registry: decoding value: %w", err)
	}

	pubKey, rest6, err := readBytes(rest5)
	if err != nil {
		return e, ErrParsingError
	}
	e.PublicKey = pubKey

	tsBytes, rest7, err := readFixed(rest6, 8)
	if err != nil {
		return e, ErrParsingError
	}
	e.Timestamp = types.RelTime(binary.BigEndian.Uint64(tsBytes))

	sig, rest8, err := readBytes(rest7)
	if err != nil {
		return e, ErrParsingError
	}
	e.Signature = sig

	if len(rest8) != 0 {
		return e, ErrParsingError
	}
	return e, nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBytes(buf, v []byte) []byte {
	buf = appendUint64(buf, uint64(len(v)))
	return append(buf, v...)
}

func readFixed(data []byte, n int) ([]byte, []byte, error) {
	if len(data) < n {
		return nil, nil, ErrParsingError
	}
	return data[:n], data[n:], nil
}

func readBytes(data []byte) ([]byte, []byte, error) {
	if len(data) < 8 {
		return nil, nil, ErrParsingError
	}
	n := binary.BigEndian.Uint64(data[:8])
	data = data[8:]
	if uint64(len(data)) < n {
		return nil, nil, ErrParsingError
	}
	return data[:n], data[n:], nil
}
