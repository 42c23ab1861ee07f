package crypto

import (
	"encoding/binary"
	"fmt"
)

// Wire format for a stored key:
//
//	Length: uint32 (big-endian)
//	Data:   raw key bytes
//
// There is a single key type (Ed25519), so no type tag is carried; callers
// that need to distinguish key kinds on the wire do so at a higher layer.
const marshalHeaderSize = 4

// MarshalPublicKey serializes a public key as [Length(4)][Data(n)].
func MarshalPublicKey(key PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPublicKey
	}

	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal public key: %w", err)
	}

	buf := make([]byte, marshalHeaderSize+len(raw))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(raw)))
	copy(buf[4:], raw)
	return buf, nil
}

// UnmarshalPublicKeyBytes deserializes a public key from [Length(4)][Data(n)].
func UnmarshalPublicKeyBytes(data []byte) (PublicKey, error) {
	raw, err := unmarshalFramed(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalEd25519PublicKey(raw)
}

// MarshalPrivateKey serializes a private key as [Length(4)][Data(n)].
func MarshalPrivateKey(key PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}

	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal private key: %w", err)
	}

	buf := make([]byte, marshalHeaderSize+len(raw))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(raw)))
	copy(buf[4:], raw)
	return buf, nil
}

// UnmarshalPrivateKeyBytes deserializes a private key from [Length(4)][Data(n)].
func UnmarshalPrivateKeyBytes(data []byte) (PrivateKey, error) {
	raw, err := unmarshalFramed(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalEd25519PrivateKey(raw)
}

func unmarshalFramed(data []byte) ([]byte, error) {
	if len(data) < marshalHeaderSize {
		return nil, fmt.Errorf("crypto: unmarshal: data too short")
	}
	length := binary.BigEndian.Uint32(data[0:4])
	if len(data) < marshalHeaderSize+int(length) {
		return nil, fmt.Errorf("crypto: unmarshal: length mismatch")
	}
	return data[marshalHeaderSize : marshalHeaderSize+int(length)], nil
}
