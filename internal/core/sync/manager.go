package sync

import (
	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
	"github.com/meshcore/mesh/pkg/wire"
)

var logger = log.Logger("sync")

// Manager tracks one anti-entropy Session per peer for a single named
// registry.
type Manager struct {
	name    string
	timeout types.RelTime

	sessions map[types.DeviceID]*Session
}

// NewManager builds a Manager for the named registry. timeout bounds
// how long a session may sit in Probing or Transferring before Tick
// resets it to Idle.
func NewManager(name string, timeout types.RelTime) *Manager {
	return &Manager{name: name, timeout: timeout, sessions: make(map[types.DeviceID]*Session)}
}

// State reports peer's current session state (Idle if there is none).
func (m *Manager) State(peer types.DeviceID) State {
	s, ok := m.sessions[peer]
	if !ok {
		return Idle
	}
	return s.State
}

// InProgress reports whether peer has a live, unexpired session.
func (m *Manager) InProgress(peer types.DeviceID, now types.RelTime) bool {
	s, ok := m.sessions[peer]
	return ok && s.State != Idle && s.Deadline > now
}

// ShouldSync reports whether a received RegistryHead diverges from
// this device's own head hash, and so warrants starting a session.
func ShouldSync(localHash types.Hash, head wire.RegistryHead) bool {
	return !localHash.Equal(head.HeadHash)
}

// Start begins a new Probing session against peer, bracketing the
// search over [0, min(localCount, remoteCount)). Returns nil,
// ErrSyncInProgress if peer already has a live session, and nil, nil if
// there is nothing to probe (one replica is empty).
func (m *Manager) Start(peer types.DeviceID, localCount, remoteCount uint32, now types.RelTime) (*wire.RegistryHashRequest, error) {
	if m.InProgress(peer, now) {
		return nil, ErrSyncInProgress
	}

	max := localCount
	if remoteCount < max {
		max = remoteCount
	}
	if max == 0 {
		return nil, nil
	}

	requestID := types.NewUUID()
	m.sessions[peer] = &Session{
		State:     Probing,
		RequestID: requestID,
		Min:       0,
		Max:       max,
		Target:    peer,
		Deadline:  now + m.timeout,
	}

	index := max / 2
	return &wire.RegistryHashRequest{Name: m.name, RequestID: requestID, Index: index}, nil
}

// HandleHashReply narrows peer's session bracket using chainHashAt, a
// callback resolving this device's own chain hash at a canonical-order
// index. It returns the next probe to send, or — once the bracket
// converges — the diverged-at index and a state transition to
// Transferring. A reply that doesn't match a live Probing session for
// peer is ignored.
func (m *Manager) HandleHashReply(peer types.DeviceID, reply wire.RegistryHashReply, now types.RelTime, chainHashAt func(uint32) (types.Hash, bool)) (next *wire.RegistryHashRequest, divergedAt *uint32) {
	s, ok := m.sessions[peer]
	if !ok || s.State != Probing || s.RequestID != reply.RequestID {
		return nil, nil
	}
	if s.Deadline <= now {
		delete(m.sessions, peer)
		return nil, nil
	}

	if localHash, ok := chainHashAt(reply.Index); ok && localHash.Equal(reply.Hash) {
		s.Min = reply.Index + 1
	} else {
		s.Max = reply.Index
	}

	if s.Min >= s.Max {
		at := s.Min
		s.State = Transferring
		s.Deadline = now + m.timeout
		logger.Debug("sync converged", "peer", peer, "divergedAt", at)
		return nil, &at
	}

	index := (s.Min + s.Max) / 2
	req := wire.RegistryHashRequest{Name: m.name, RequestID: s.RequestID, Index: index}
	return &req, nil
}

// Complete closes peer's session, returning it to Idle. Call this once
// the diverged suffix has been pushed or received.
func (m *Manager) Complete(peer types.DeviceID) {
	delete(m.sessions, peer)
}

// Tick expires any session past its deadline, returning the affected
// peers.
func (m *Manager) Tick(now types.RelTime) []types.DeviceID {
	var expired []types.DeviceID
	for peer, s := range m.sessions {
		if s.Deadline <= now {
			expired = append(expired, peer)
			delete(m.sessions, peer)
		}
	}
	return expired
}

// RespondToHashRequest stateelessly answers an inbound probe for this
// device's own registry: it never consults or mutates session state,
// since a probe may come from a peer this device has no session with.
func RespondToHashRequest(name string, req wire.RegistryHashRequest, chainHashAt func(uint32) (types.Hash, bool)) (wire.RegistryHashReply, bool) {
	h, ok := chainHashAt(req.Index)
	if !ok {
		return wire.RegistryHashReply{}, false
	}
	return wire.RegistryHashReply{Name: name, RequestID: req.RequestID, Index: req.Index, Hash: h}, true
}
