package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
)

// Key is the common interface shared by public and private keys.
type Key interface {
	// Raw returns the raw key bytes.
	Raw() ([]byte, error)

	// Equals reports whether two keys carry the same raw bytes.
	Equals(Key) bool
}

// PublicKey verifies signatures produced by the matching PrivateKey.
type PublicKey interface {
	Key

	// Verify reports whether sig is a valid signature of data under this key.
	Verify(data, sig []byte) (bool, error)
}

// PrivateKey signs data and exposes the matching PublicKey.
type PrivateKey interface {
	Key

	// Sign produces a signature over data.
	Sign(data []byte) ([]byte, error)

	// GetPublic returns the public half of the key pair.
	GetPublic() PublicKey
}

// GenerateKeyPair generates a new Ed25519 key pair using the system CSPRNG.
func GenerateKeyPair() (PrivateKey, PublicKey, error) {
	return GenerateEd25519Key(rand.Reader)
}

// KeyEqual performs a constant-time comparison of two keys' raw bytes.
func KeyEqual(k1, k2 Key) bool {
	b1, err1 := k1.Raw()
	b2, err2 := k2.Raw()
	if err1 != nil || err2 != nil {
		return false
	}
	return subtle.ConstantTimeCompare(b1, b2) == 1
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, b)
	return b, err
}
