// Package mesh wires the IARP/IERP routing core and the Replicated
// Signed Registry core into a single embeddable Core: one struct that
// owns every subsystem's state, drives all of it from an injected
// RelTimeProvider, and never spawns a goroutine or blocks on I/O.
package mesh

import (
	"time"

	"github.com/meshcore/mesh/internal/core/discovery"
	"github.com/meshcore/mesh/internal/core/dispatch"
	"github.com/meshcore/mesh/internal/core/identity"
	"github.com/meshcore/mesh/internal/core/registry"
	"github.com/meshcore/mesh/internal/core/routing"
	"github.com/meshcore/mesh/internal/core/sync"
	"github.com/meshcore/mesh/pkg/interfaces"
	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
	"github.com/meshcore/mesh/pkg/wire"
)

var logger = log.Logger("mesh")

const registryName = "mesh"

// Delivery is an application payload that arrived addressed to this
// device, handed back from ProcessDatagram for the embedder to act on.
type Delivery = dispatch.Delivery

// Core is the single owner of every subsystem: the Credentials Store,
// the IARP routing table and advertiser, the IERP route cache and
// discovery engine, the Network Dispatcher, the Registry Core, and its
// anti-entropy sync sessions. Every public method here runs to
// completion synchronously and is mutually exclusive with every other
// one; an embedder that wants concurrent access wraps Core in its own
// mutex.
type Core struct {
	self types.DeviceID
	cfg  Config

	transport interfaces.Transport
	keys      interfaces.KeyProvider

	credentials *identity.Store
	table       *routing.Table
	advertiser  *routing.Advertiser
	routeCache  *discovery.RouteCache
	discovery   *discovery.Engine
	dispatcher  *dispatch.Dispatcher

	registry *registry.Registry[[]byte]
	sync     *sync.Manager

	nextAdvert       types.RelTime
	nextHeadAnnounce types.RelTime
}

// New builds a Core for self. storage backs the credentials store and,
// were a persistent registry log required, would back it too (the
// registry here is held in memory for the lifetime of the process, per
// spec §5's resource model). transport carries frames to neighbors;
// keys signs and verifies on this device's behalf; clock is handed to
// the registry, which reads it to timestamp each entry that Set or Del
// appends — every other timing decision is driven by the now values
// passed into Tick/ProcessDatagram/QueueMessageTo.
func New(self types.DeviceID, storage interfaces.Storage, transport interfaces.Transport, keys interfaces.KeyProvider, clock interfaces.RelTimeProvider, opts ...Option) *Core {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	credentials := identity.NewStore(storage)
	table := routing.NewTable(cfg.ZoneRadius)
	advertiser := routing.NewAdvertiser(self, cfg.ZoneRadius, ms(cfg.AdvertLifetime), table, credentials, keys, keys)
	routeCache := discovery.NewRouteCache()
	engine := discovery.NewEngine(self, cfg.MaximumRouteLength, ms(cfg.DiscoveryTimeout), cfg.DedupWindow)
	dispatcher := dispatch.New(self, keys, credentials, table, advertiser, routeCache, engine, ms(cfg.AdvertLifetime), cfg.MaxParkedPayloads)
	reg := registry.NewRegistry[[]byte](registryName, registry.BytesCodec{}, registry.CreatorOwnsKey[[]byte], keys, clock)
	syncMgr := sync.NewManager(registryName, ms(cfg.SyncProbeTimeout))

	return &Core{
		self:        self,
		cfg:         cfg,
		transport:   transport,
		keys:        keys,
		credentials: credentials,
		table:       table,
		advertiser:  advertiser,
		routeCache:  routeCache,
		discovery:   engine,
		dispatcher:  dispatcher,
		registry:    reg,
		sync:        syncMgr,
	}
}

// ms converts a configured time.Duration into the RelTime unit every
// subsystem actually runs on.
func ms(d time.Duration) types.RelTime {
	return types.RelTime(d.Milliseconds())
}

// Credentials exposes the Credentials Store directly, so an embedder
// can Insert bindings for newly discovered devices before those
// devices' frames will be accepted.
func (c *Core) Credentials() *identity.Store {
	return c.credentials
}

// ProcessDatagram classifies an inbound frame by its leading tag and
// reacts to it: routing tags (Advertisement, RouteDiscovery,
// RouteDiscoveryAck, DeliveryFailure, Message) go to the Network
// Dispatcher; registry tags (RegistryHead, RegistryHashRequest,
// RegistryHashReply, RegistryEntries) drive the anti-entropy sync
// session for from. Every outbound frame this produces is sent
// immediately through the injected Transport; only delivered
// application payloads are returned to the caller.
//
// from identifies the immediate neighbor that handed frame to this
// device. The routing tags don't need it — they self-identify their
// origin (Message.Source, Advertisement.Origin) — but the registry
// tags carry no such field on the wire, since the original sync
// protocol assumed a direct point-to-point channel per peer; from
// supplies that missing context so Manager can key its per-peer
// sessions correctly.
func (c *Core) ProcessDatagram(from types.DeviceID, frame []byte, now types.RelTime) ([]Delivery, error) {
	tag, body, err := wire.Decode(frame)
	if err != nil {
		return nil, err
	}

	switch tag {
	case wire.TagRegistryHead, wire.TagRegistryHashRequest, wire.TagRegistryHashReply, wire.TagRegistryEntries:
		return nil, c.processRegistryFrame(from, tag, body, now)
	default:
		out, deliveries, err := c.dispatcher.ProcessDatagram(frame, now)
		if err != nil {
			return nil, err
		}
		c.sendAll(out)
		return deliveries, nil
	}
}

func (c *Core) processRegistryFrame(from types.DeviceID, tag wire.Tag, body []byte, now types.RelTime) error {
	switch tag {
	case wire.TagRegistryHead:
		head, err := wire.DecodeRegistryHead(body)
		if err != nil {
			return err
		}
		if head.Name != c.registry.Name() {
			return ErrUnknownRegistryName
		}
		if !sync.ShouldSync(c.registry.GetHeadHash(), head) {
			return nil
		}
		req, err := c.sync.Start(from, uint32(c.registry.EntryCount()), head.EntryCount, now)
		if err != nil || req == nil {
			return nil
		}
		return c.transport.SendTo(from, req.Encode())

	case wire.TagRegistryHashRequest:
		req, err := wire.DecodeRegistryHashRequest(body)
		if err != nil {
			return err
		}
		if req.Name != c.registry.Name() {
			return ErrUnknownRegistryName
		}
		reply, ok := sync.RespondToHashRequest(c.registry.Name(), req, c.chainHashAt)
		if !ok {
			return nil
		}
		return c.transport.SendTo(from, reply.Encode())

	case wire.TagRegistryHashReply:
		reply, err := wire.DecodeRegistryHashReply(body)
		if err != nil {
			return err
		}
		if reply.Name != c.registry.Name() {
			return ErrUnknownRegistryName
		}
		next, divergedAt := c.sync.HandleHashReply(from, reply, now, c.chainHashAt)
		if next != nil {
			return c.transport.SendTo(from, next.Encode())
		}
		if divergedAt != nil {
			c.sync.Complete(from)
			entries := wire.RegistryEntries{
				Name:          c.registry.Name(),
				StartingIndex: *divergedAt,
				Entries:       c.registry.EncodeEntriesFrom(int(*divergedAt)),
			}
			return c.transport.SendTo(from, entries.Encode())
		}
		return nil

	case wire.TagRegistryEntries:
		entries, err := wire.DecodeRegistryEntries(body)
		if err != nil {
			return err
		}
		if entries.Name != c.registry.Name() {
			return ErrUnknownRegistryName
		}
		if _, err := c.registry.AddSerializedEntries(entries.Entries); err != nil {
			return err
		}
		c.sync.Complete(from)
		return nil
	}
	return dispatch.ErrUnsupportedFrame
}

// QueueMessageTo signs payload and sends it toward target: immediately,
// if a route is already known, or after parking it and initiating a
// route discovery otherwise.
func (c *Core) QueueMessageTo(target types.DeviceID, payload []byte, now types.RelTime) error {
	out, err := c.dispatcher.QueueMessageTo(target, payload, now)
	if err != nil {
		return err
	}
	c.sendAll(out)
	return nil
}

// Sync forces an immediate RegistryHead broadcast instead of waiting
// for the next periodic announcement in Tick, prompting any listening
// peer with a divergent head_hash to begin reconciliation.
func (c *Core) Sync(now types.RelTime) error {
	return c.announceHead(now)
}

// Set appends a signed Upsert entry for key to the registry.
func (c *Core) Set(key string, value []byte) error {
	return c.registry.Set(key, value)
}

// Del appends a signed Delete entry for key to the registry.
func (c *Core) Del(key string) error {
	return c.registry.Del(key)
}

// Get returns key's current head_state value.
func (c *Core) Get(key string) ([]byte, bool) {
	return c.registry.Get(key)
}

// Has reports whether key is present in head_state.
func (c *Core) Has(key string) bool {
	return c.registry.Has(key)
}

// EntryCount returns the number of entries currently in the registry
// log, counting entries that were retained but suppressed at the
// head_state level (failed signature or permission checks) as well as
// effective ones.
func (c *Core) EntryCount() int {
	return c.registry.EntryCount()
}

// Clear resets the registry to empty. This is strictly local and
// produces no entry, matching spec §9's safer default for clear().
func (c *Core) Clear() {
	c.registry.Clear()
}

// Tick is the single place where time-driven state transitions happen:
// routing table expiry, periodic advertisement and registry-head
// emission, route discovery timeout, and sync session timeout. It
// returns destinations whose pending route discovery expired without
// an acknowledgement.
func (c *Core) Tick(now types.RelTime) []types.DeviceID {
	c.table.Sweep(now)

	if now >= c.nextAdvert {
		if ad, err := c.advertiser.Tick(); err != nil {
			logger.Warn("failed to sign advertisement", "error", err)
		} else if err := c.transport.Broadcast(ad.Encode()); err != nil {
			logger.Debug("advertisement broadcast failed", "error", err)
		}
		c.nextAdvert = now + ms(c.cfg.AdvertInterval)
	}

	if now >= c.nextHeadAnnounce {
		if err := c.announceHead(now); err != nil {
			logger.Debug("registry head broadcast failed", "error", err)
		}
		c.nextHeadAnnounce = now + ms(c.cfg.SyncAnnounceInterval)
	}

	for _, peer := range c.sync.Tick(now) {
		logger.Debug("sync session timed out", "peer", peer)
	}

	return c.dispatcher.Tick(now)
}

// chainHashAt adapts the registry's canonical-order index type (int)
// to the uint32 wire representation sync probes and replies carry.
func (c *Core) chainHashAt(i uint32) (types.Hash, bool) {
	return c.registry.ChainHashAt(int(i))
}

func (c *Core) announceHead(now types.RelTime) error {
	head := wire.RegistryHead{
		Name:       c.registry.Name(),
		HeadHash:   c.registry.GetHeadHash(),
		EntryCount: uint32(c.registry.EntryCount()),
		InstanceID: c.registry.InstanceID(),
	}
	return c.transport.Broadcast(head.Encode())
}

func (c *Core) sendAll(frames []dispatch.OutgoingFrame) {
	for _, f := range frames {
		var err error
		if f.Target.Broadcast {
			err = c.transport.Broadcast(f.Frame)
		} else {
			err = c.transport.SendTo(f.Target.Peer, f.Frame)
		}
		if err != nil {
			logger.Debug("transport send failed", "error", err)
		}
	}
}
