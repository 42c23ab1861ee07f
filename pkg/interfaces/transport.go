package interfaces

import "github.com/meshcore/mesh/pkg/types"

// Transport is the substrate the core rides on: best-effort broadcast to
// immediate neighbors, plus unicast when a next hop is already known. The
// core never dials, listens, or manages connections — it only ever hands
// already-framed bytes to Broadcast/SendTo. The core does not call Recv;
// the embedder drains it and passes each frame to Core.ProcessDatagram.
type Transport interface {
	// Broadcast sends frame to every immediate neighbor.
	Broadcast(frame []byte) error

	// SendTo sends frame to a single known neighbor.
	SendTo(peer types.DeviceID, frame []byte) error

	// Recv returns the next inbound (peer, frame) pair, or ok=false if
	// nothing is pending. Recv never blocks.
	Recv() (peer types.DeviceID, frame []byte, ok bool)
}
