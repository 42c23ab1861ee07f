package interfaces

// KeyPair is this device's own long-lived signing identity.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// KeyProvider signs outgoing material with this device's own key and
// verifies signatures under arbitrary public keys. The core never holds
// a raw private key itself; it only ever calls Sign on this capability.
type KeyProvider interface {
	// OwnKeys returns this device's own key pair.
	OwnKeys() KeyPair

	// Sign signs msg with this device's own private key.
	Sign(msg []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of msg under
	// publicKey.
	Verify(publicKey, msg, sig []byte) bool
}
