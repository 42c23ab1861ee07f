package routing

import "github.com/meshcore/mesh/pkg/types"

// Entry is a single IARP routing table row: a known path to peer via
// next_hop, hop_count zones away, valid until expires_at.
type Entry struct {
	Peer      types.DeviceID
	NextHop   types.DeviceID
	HopCount  uint8
	ExpiresAt types.RelTime
}

// Table is the IARP Routing Table: a multimap peer -> set of candidate
// (next_hop, hop_count) entries, grounded on the teacher's
// expiring-multimap address book, generalized to the single-threaded
// cooperative core (no internal locking — the core serializes all
// access).
type Table struct {
	zoneRadius uint8
	entries    map[types.DeviceID]map[types.DeviceID]*Entry // peer -> next_hop -> entry
}

// NewTable builds an empty routing table bounded by zoneRadius.
func NewTable(zoneRadius uint8) *Table {
	return &Table{
		zoneRadius: zoneRadius,
		entries:    make(map[types.DeviceID]map[types.DeviceID]*Entry),
	}
}

// Insert records a path to peer via nextHop with the given hop count,
// refreshing expires_at if the (peer, next_hop) pair already exists.
// Entries whose hop_count exceeds the configured zone radius are
// silently dropped — they are outside this device's zone.
func (t *Table) Insert(peer, nextHop types.DeviceID, hopCount uint8, now, lifetime types.RelTime) {
	if hopCount > t.zoneRadius {
		return
	}
	byHop, ok := t.entries[peer]
	if !ok {
		byHop = make(map[types.DeviceID]*Entry)
		t.entries[peer] = byHop
	}
	byHop[nextHop] = &Entry{
		Peer:      peer,
		NextHop:   nextHop,
		HopCount:  hopCount,
		ExpiresAt: now + lifetime,
	}
}

// Lookup returns the best unexpired entry for peer: the minimum
// hop_count, tie-broken by the most-recent expires_at, then by
// lexicographically smallest next_hop.
func (t *Table) Lookup(peer types.DeviceID, now types.RelTime) (Entry, bool) {
	byHop, ok := t.entries[peer]
	if !ok {
		return Entry{}, false
	}

	var best *Entry
	for _, e := range byHop {
		if e.ExpiresAt <= now {
			continue
		}
		if best == nil || better(e, best) {
			best = e
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return *best, true
}

func better(candidate, current *Entry) bool {
	if candidate.HopCount != current.HopCount {
		return candidate.HopCount < current.HopCount
	}
	if candidate.ExpiresAt != current.ExpiresAt {
		return candidate.ExpiresAt > current.ExpiresAt
	}
	return candidate.NextHop.Less(current.NextHop)
}

// Sweep removes every entry that has expired as of now.
func (t *Table) Sweep(now types.RelTime) {
	for peer, byHop := range t.entries {
		for hop, e := range byHop {
			if e.ExpiresAt <= now {
				delete(byHop, hop)
			}
		}
		if len(byHop) == 0 {
			delete(t.entries, peer)
		}
	}
}

// Invalidate removes every entry reachable via nextHop, used when a
// DeliveryFailure names nextHop as broken.
func (t *Table) Invalidate(nextHop types.DeviceID) {
	for peer, byHop := range t.entries {
		delete(byHop, nextHop)
		if len(byHop) == 0 {
			delete(t.entries, peer)
		}
	}
}

// Peers returns every peer with at least one unexpired entry.
func (t *Table) Peers(now types.RelTime) []types.DeviceID {
	peers := make([]types.DeviceID, 0, len(t.entries))
	for peer, byHop := range t.entries {
		for _, e := range byHop {
			if e.ExpiresAt > now {
				peers = append(peers, peer)
				break
			}
		}
	}
	return peers
}
