package testutil

import (
	"github.com/meshcore/mesh/pkg/interfaces"
	"github.com/meshcore/mesh/pkg/lib/crypto"
)

// KeyProvider is an interfaces.KeyProvider backed by a generated Ed25519
// key pair.
type KeyProvider struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey

	pubRaw  []byte
	privRaw []byte
}

// NewKeyProvider generates a fresh key pair and wraps it.
func NewKeyProvider() *KeyProvider {
	priv, pub, err := crypto.GenerateKeyPair()
	if err != nil {
		panic(err)
	}
	pubRaw, err := pub.Raw()
	if err != nil {
		panic(err)
	}
	privRaw, err := priv.Raw()
	if err != nil {
		panic(err)
	}
	return &KeyProvider{priv: priv, pub: pub, pubRaw: pubRaw, privRaw: privRaw}
}

// OwnKeys implements interfaces.KeyProvider.
func (k *KeyProvider) OwnKeys() interfaces.KeyPair {
	return interfaces.KeyPair{PublicKey: k.pubRaw, PrivateKey: k.privRaw}
}

// Sign implements interfaces.KeyProvider.
func (k *KeyProvider) Sign(msg []byte) ([]byte, error) {
	return k.priv.Sign(msg)
}

// Verify implements interfaces.KeyProvider.
func (k *KeyProvider) Verify(publicKey, msg, sig []byte) bool {
	return VerifyWith(publicKey, msg, sig)
}

// VerifyWith verifies sig over msg under an arbitrary raw Ed25519
// public key, independent of any particular KeyProvider instance.
func VerifyWith(publicKey, msg, sig []byte) bool {
	pub, err := crypto.UnmarshalEd25519PublicKey(publicKey)
	if err != nil {
		return false
	}
	ok, err := pub.Verify(msg, sig)
	return err == nil && ok
}

// VerifyWithAdapter is a stateless Verifier backed by VerifyWith, for
// tests that don't need a full KeyProvider.
type VerifyWithAdapter struct{}

// Verify implements routing.Verifier.
func (VerifyWithAdapter) Verify(publicKey, msg, sig []byte) bool {
	return VerifyWith(publicKey, msg, sig)
}
