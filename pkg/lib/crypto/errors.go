// Package crypto provides the signing primitives used across the mesh.
package crypto

import "errors"

// Key errors.
var (
	// ErrNilPrivateKey is returned when a nil private key is used.
	ErrNilPrivateKey = errors.New("crypto: nil private key")

	// ErrNilPublicKey is returned when a nil public key is used.
	ErrNilPublicKey = errors.New("crypto: nil public key")

	// ErrInvalidKeySize is returned when raw key bytes have the wrong length.
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidPrivateKey is returned when raw private key bytes fail to parse.
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")
)

// Signature errors.
var (
	// ErrNilSignature is returned when a nil signature is verified.
	ErrNilSignature = errors.New("crypto: nil signature")

	// ErrInvalidSignature reports a signature that does not verify; no function in this package returns it.
	ErrInvalidSignature = errors.New("crypto: invalid signature")
)
