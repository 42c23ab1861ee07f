package mesh

import "time"

// Config holds every tunable named in the external interface table.
// Nothing in internal/core reads a package-level constant; every value
// flows through a Config built by DefaultConfig and threaded through
// construction.
type Config struct {
	// ZoneRadius bounds the IARP routing table: entries with
	// hop_count above this are never inserted.
	ZoneRadius uint8

	// MaximumRouteLength bounds IERP route discovery: a route
	// discovery is dropped once its ttl would carry it past this many
	// hops, and cached routes longer than this are rejected.
	MaximumRouteLength uint8

	// AdvertInterval is how often the Advertisement Engine emits a
	// fresh advertisement.
	AdvertInterval time.Duration

	// AdvertLifetime is how long a routing table entry remains valid
	// after being refreshed.
	AdvertLifetime time.Duration

	// DiscoveryTimeout bounds how long a route discovery waits for an
	// acknowledgement before the destination is reported unreachable.
	DiscoveryTimeout time.Duration

	// DedupWindow is the capacity of the route-discovery request-id
	// deduplication LRU.
	DedupWindow int

	// MaxParkedPayloads bounds the per-destination parking queue for
	// payloads awaiting route resolution.
	MaxParkedPayloads int

	// SyncProbeTimeout bounds how long a registry sync session may
	// remain in a non-Idle state before reverting to Idle.
	SyncProbeTimeout time.Duration

	// SyncAnnounceInterval is how often the registry core broadcasts a
	// RegistryHead announcement, prompting any peer with a divergent
	// head_hash to begin binary-search reconciliation.
	SyncAnnounceInterval time.Duration
}

// DefaultConfig returns the spec's suggested defaults.
func DefaultConfig() Config {
	return Config{
		ZoneRadius:           4,
		MaximumRouteLength:   20,
		AdvertInterval:       5 * time.Second,
		AdvertLifetime:       30 * time.Second,
		DiscoveryTimeout:     10 * time.Second,
		DedupWindow:          256,
		MaxParkedPayloads:    16,
		SyncProbeTimeout:     10 * time.Second,
		SyncAnnounceInterval: 15 * time.Second,
	}
}

// Option mutates a Config at construction time.
type Option func(*Config)

// WithZoneRadius overrides ZoneRadius.
func WithZoneRadius(radius uint8) Option {
	return func(c *Config) { c.ZoneRadius = radius }
}

// WithMaximumRouteLength overrides MaximumRouteLength.
func WithMaximumRouteLength(length uint8) Option {
	return func(c *Config) { c.MaximumRouteLength = length }
}

// WithAdvertInterval overrides AdvertInterval.
func WithAdvertInterval(d time.Duration) Option {
	return func(c *Config) { c.AdvertInterval = d }
}

// WithAdvertLifetime overrides AdvertLifetime.
func WithAdvertLifetime(d time.Duration) Option {
	return func(c *Config) { c.AdvertLifetime = d }
}

// WithDiscoveryTimeout overrides DiscoveryTimeout.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(c *Config) { c.DiscoveryTimeout = d }
}

// WithDedupWindow overrides DedupWindow.
func WithDedupWindow(n int) Option {
	return func(c *Config) { c.DedupWindow = n }
}

// WithMaxParkedPayloads overrides MaxParkedPayloads.
func WithMaxParkedPayloads(n int) Option {
	return func(c *Config) { c.MaxParkedPayloads = n }
}

// WithSyncProbeTimeout overrides SyncProbeTimeout.
func WithSyncProbeTimeout(d time.Duration) Option {
	return func(c *Config) { c.SyncProbeTimeout = d }
}

// WithSyncAnnounceInterval overrides SyncAnnounceInterval.
func WithSyncAnnounceInterval(d time.Duration) Option {
	return func(c *Config) { c.SyncAnnounceInterval = d }
}
