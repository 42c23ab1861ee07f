package discovery

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
	"github.com/meshcore/mesh/pkg/wire"
)

var logger = log.Logger("discovery")

// ZoneLookup resolves a destination to a path within this device's
// local zone, as provided by the IARP routing table.
type ZoneLookup func(dest types.DeviceID, now types.RelTime) ([]types.DeviceID, bool)

type pendingDiscovery struct {
	destination types.DeviceID
	deadline    types.RelTime
}

// Engine implements the IERP Route Discovery Engine: initiation,
// rebroadcast, acknowledgement handling and request-id deduplication.
type Engine struct {
	self        types.DeviceID
	maxRouteLen uint8
	timeout     types.RelTime

	dedup   *lru.Cache[types.UUID, struct{}]
	pending map[types.UUID]*pendingDiscovery
}

// NewEngine builds a Discovery Engine. dedupWindow bounds the
// request-id deduplication LRU's capacity.
func NewEngine(self types.DeviceID, maxRouteLen uint8, timeout types.RelTime, dedupWindow int) *Engine {
	cache, err := lru.New[types.UUID, struct{}](dedupWindow)
	if err != nil {
		// dedupWindow <= 0; fall back to a minimal cache rather than
		// panicking on a misconfigured but otherwise-functional core.
		cache, _ = lru.New[types.UUID, struct{}](1)
	}
	return &Engine{
		self:        self,
		maxRouteLen: maxRouteLen,
		timeout:     timeout,
		dedup:       cache,
		pending:     make(map[types.UUID]*pendingDiscovery),
	}
}

// Initiate starts a new route discovery for dest, remembering the
// request for DISCOVERY_TIMEOUT.
func (e *Engine) Initiate(dest types.DeviceID, now types.RelTime) wire.RouteDiscovery {
	requestID := types.NewUUID()
	e.dedup.Add(requestID, struct{}{})
	e.pending[requestID] = &pendingDiscovery{destination: dest, deadline: now + e.timeout}

	return wire.RouteDiscovery{
		RequestID:   requestID,
		Origin:      e.self,
		Destination: dest,
		RouteSoFar:  []types.DeviceID{e.self},
		TTL:         e.maxRouteLen,
	}
}

// OnRouteDiscovery processes a received route discovery: returns either
// an acknowledgement to send back toward the origin, a rebroadcast to
// continue the flood, or neither (drop).
func (e *Engine) OnRouteDiscovery(rd wire.RouteDiscovery, now types.RelTime, zoneLookup ZoneLookup) (ack *wire.RouteDiscoveryAck, rebroadcast *wire.RouteDiscovery) {
	if _, seen := e.dedup.Get(rd.RequestID); seen {
		return nil, nil
	}
	e.dedup.Add(rd.RequestID, struct{}{})

	if pathInZone, found := zoneLookup(rd.Destination, now); found {
		route := append(append(append([]types.DeviceID(nil), rd.RouteSoFar...), e.self), pathInZone...)
		return &wire.RouteDiscoveryAck{RequestID: rd.RequestID, Route: route}, nil
	}

	if rd.Destination == e.self {
		route := append(append([]types.DeviceID(nil), rd.RouteSoFar...), e.self)
		return &wire.RouteDiscoveryAck{RequestID: rd.RequestID, Route: route}, nil
	}

	if rd.TTL == 0 || containsSelf(rd.RouteSoFar, e.self) {
		return nil, nil
	}

	next := rd
	next.RouteSoFar = append(append([]types.DeviceID(nil), rd.RouteSoFar...), e.self)
	next.TTL = rd.TTL - 1
	return nil, &next
}

// OnRouteDiscoveryAck validates and resolves a pending discovery.
// Validation requires the route to begin with this device (the
// discovery's origin), end with the originally requested destination,
// and be no longer than the maximum route length. The first valid ack
// wins; subsequent acks for the same
// request_id are silently discarded because the pending entry is
// already gone.
func (e *Engine) OnRouteDiscoveryAck(ack wire.RouteDiscoveryAck) ([]types.DeviceID, bool) {
	pending, ok := e.pending[ack.RequestID]
	if !ok {
		return nil, false
	}
	if len(ack.Route) == 0 || ack.Route[0] != e.self {
		return nil, false
	}
	if len(ack.Route) > int(e.maxRouteLen) {
		return nil, false
	}
	if ack.Route[len(ack.Route)-1] != pending.destination {
		return nil, false
	}
	delete(e.pending, ack.RequestID)
	return ack.Route, true
}

// Tick expires discoveries whose deadline has passed, returning the
// destinations that are now unreachable.
func (e *Engine) Tick(now types.RelTime) []types.DeviceID {
	var unreachable []types.DeviceID
	for requestID, p := range e.pending {
		if p.deadline <= now {
			unreachable = append(unreachable, p.destination)
			delete(e.pending, requestID)
			logger.Debug("route discovery timed out", "destination", p.destination)
		}
	}
	return unreachable
}

func containsSelf(route []types.DeviceID, self types.DeviceID) bool {
	for _, id := range route {
		if id == self {
			return true
		}
	}
	return false
}
