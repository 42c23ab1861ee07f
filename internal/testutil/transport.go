package testutil

import (
	"sync"

	"github.com/meshcore/mesh/pkg/types"
)

type inboundFrame struct {
	peer  types.DeviceID
	frame []byte
}

// Network is a shared in-memory broadcast medium. Devices register with
// Join to obtain a Transport wired to every other joined device. By
// default every joined device is a direct neighbor of every other; Link
// restricts delivery to an explicit adjacency list, for tests that need
// a multi-hop topology instead of a single broadcast domain.
type Network struct {
	mu        sync.Mutex
	devices   map[types.DeviceID]*MemoryTransport
	neighbors map[types.DeviceID]map[types.DeviceID]bool
}

// NewNetwork builds an empty shared medium.
func NewNetwork() *Network {
	return &Network{devices: make(map[types.DeviceID]*MemoryTransport)}
}

// Join registers self on the network and returns its Transport.
func (n *Network) Join(self types.DeviceID) *MemoryTransport {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := &MemoryTransport{self: self, network: n}
	n.devices[self] = t
	return t
}

// Link lets a and b reach each other directly. A device with at least
// one Link call can send only to the devices it is linked to. Call it
// once per edge of the intended topology; a device with no Link calls
// can still send to every joined device.
func (n *Network) Link(a, b types.DeviceID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.neighbors == nil {
		n.neighbors = make(map[types.DeviceID]map[types.DeviceID]bool)
	}
	if n.neighbors[a] == nil {
		n.neighbors[a] = make(map[types.DeviceID]bool)
	}
	if n.neighbors[b] == nil {
		n.neighbors[b] = make(map[types.DeviceID]bool)
	}
	n.neighbors[a][b] = true
	n.neighbors[b][a] = true
}

func (n *Network) deliver(from, to types.DeviceID, frame []byte) {
	n.mu.Lock()
	if restricted, ok := n.neighbors[from]; ok && !restricted[to] {
		n.mu.Unlock()
		return
	}
	target, ok := n.devices[to]
	n.mu.Unlock()
	if !ok {
		return
	}
	target.mu.Lock()
	target.inbox = append(target.inbox, inboundFrame{peer: from, frame: append([]byte(nil), frame...)})
	target.mu.Unlock()
}

func (n *Network) peers(except types.DeviceID) []types.DeviceID {
	n.mu.Lock()
	defer n.mu.Unlock()
	if restricted, ok := n.neighbors[except]; ok {
		peers := make([]types.DeviceID, 0, len(restricted))
		for id := range restricted {
			peers = append(peers, id)
		}
		return peers
	}
	peers := make([]types.DeviceID, 0, len(n.devices))
	for id := range n.devices {
		if id != except {
			peers = append(peers, id)
		}
	}
	return peers
}

// MemoryTransport is an interfaces.Transport backed by a shared Network.
type MemoryTransport struct {
	self    types.DeviceID
	network *Network

	mu    sync.Mutex
	inbox []inboundFrame
}

// Broadcast implements interfaces.Transport.
func (t *MemoryTransport) Broadcast(frame []byte) error {
	for _, peer := range t.network.peers(t.self) {
		t.network.deliver(t.self, peer, frame)
	}
	return nil
}

// SendTo implements interfaces.Transport.
func (t *MemoryTransport) SendTo(peer types.DeviceID, frame []byte) error {
	t.network.deliver(t.self, peer, frame)
	return nil
}

// Recv implements interfaces.Transport.
func (t *MemoryTransport) Recv() (types.DeviceID, []byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inbox) == 0 {
		return types.DeviceID{}, nil, false
	}
	next := t.inbox[0]
	t.inbox = t.inbox[1:]
	return next.peer, next.frame, true
}
