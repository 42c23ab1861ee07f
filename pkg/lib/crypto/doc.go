// Package crypto provides the signing primitives used to authenticate
// devices and registry entries across the mesh.
//
// The mesh targets resource-constrained devices, so the package supports a
// single key type: Ed25519. Key generation, signing and verification:
//
//	priv, pub, err := crypto.GenerateEd25519Key(rand.Reader)
//	sig, err := priv.Sign(data)
//	ok, err := pub.Verify(data, sig)
package crypto
