package crypto

// Sign signs data with a private key. A thin wrapper kept for symmetry with Verify.
func Sign(key PrivateKey, data []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	return key.Sign(data)
}

// Verify checks a signature against a public key.
func Verify(key PublicKey, data, sig []byte) (bool, error) {
	if key == nil {
		return false, ErrNilPublicKey
	}
	if sig == nil {
		return false, ErrNilSignature
	}
	return key.Verify(data, sig)
}
