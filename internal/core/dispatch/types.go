package dispatch

import "github.com/meshcore/mesh/pkg/types"

// Target names where an OutgoingFrame should be sent: either a single
// next-hop peer, or a local broadcast to every neighbor.
type Target struct {
	Broadcast bool
	Peer      types.DeviceID
}

// OutgoingFrame pairs a wire frame with where it should go next.
type OutgoingFrame struct {
	Target Target
	Frame  []byte
}

// Delivery is an application payload that has reached its destination.
type Delivery struct {
	Source  types.DeviceID
	Payload []byte
}

// CredentialLookup resolves a device's public key.
type CredentialLookup interface {
	Lookup(id types.DeviceID) ([]byte, bool)
}

// KeySigner signs with this device's own key and verifies arbitrary
// signatures, as provided by interfaces.KeyProvider.
type KeySigner interface {
	Sign(msg []byte) ([]byte, error)
	Verify(publicKey, msg, sig []byte) bool
}
