package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh"
	"github.com/meshcore/mesh/internal/testutil"
	"github.com/meshcore/mesh/pkg/types"
)

// meshNode bundles one Core with the plumbing a scenario test needs to
// drive it: its own identity, its transport on the shared network, and
// the keys that derive its DeviceID.
type meshNode struct {
	id        types.DeviceID
	keys      *testutil.KeyProvider
	transport *testutil.MemoryTransport
	core      *mesh.Core
}

func newMeshNode(t *testing.T, net *testutil.Network, clk *testutil.Clock, opts ...mesh.Option) *meshNode {
	t.Helper()
	keys := testutil.NewKeyProvider()
	id, ok := types.DeviceIDFromBytes(keys.OwnKeys().PublicKey[:types.DeviceIDSize])
	require.True(t, ok)
	transport := net.Join(id)
	core := mesh.New(id, testutil.NewMemoryStorage(), transport, keys, clk, opts...)
	return &meshNode{id: id, keys: keys, transport: transport, core: core}
}

// trust registers a self-attested (trust-on-first-use) credential for
// b's public key in a's Credentials Store, mirroring the out-of-band
// exchange spec §6 assumes has already happened before two devices
// will accept each other's signed frames.
func trust(t *testing.T, a, b *meshNode) {
	t.Helper()
	pub := b.keys.OwnKeys().PublicKey
	attested := append(append([]byte(nil), b.id[:]...), pub...)
	sig, err := b.keys.Sign(attested)
	require.NoError(t, err)
	require.NoError(t, a.core.Credentials().Insert(b.id, pub, sig))
}

func trustAll(t *testing.T, nodes ...*meshNode) {
	t.Helper()
	for _, a := range nodes {
		for _, b := range nodes {
			if a != b {
				trust(t, a, b)
			}
		}
	}
}

// pump drains every node's inbound queue into ProcessDatagram until no
// node has anything left to process, simulating cascading
// rebroadcasts and multi-hop forwarding within a single instant. It
// fails the test on any unexpected processing error and collects every
// delivered application payload observed along the way.
func pump(t *testing.T, nodes []*meshNode, now types.RelTime) []mesh.Delivery {
	t.Helper()
	var deliveries []mesh.Delivery
	for round := 0; round < 200; round++ {
		progressed := false
		for _, n := range nodes {
			for {
				peer, frame, ok := n.transport.Recv()
				if !ok {
					break
				}
				progressed = true
				d, err := n.core.ProcessDatagram(peer, frame, now)
				require.NoError(t, err)
				deliveries = append(deliveries, d...)
			}
		}
		if !progressed {
			return deliveries
		}
	}
	t.Fatal("pump: network did not quiesce")
	return nil
}

// TestScenarioZoneRouting is spec §8 S1: three devices in a line, each
// within the others' zone. One advertisement interval after A
// broadcasts, a message A sends to C should arrive purely via IARP
// zone routing (no IERP discovery needed).
func TestScenarioZoneRouting(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	a := newMeshNode(t, net, clk)
	b := newMeshNode(t, net, clk)
	c := newMeshNode(t, net, clk)
	net.Link(a.id, b.id)
	net.Link(b.id, c.id)
	trustAll(t, a, b, c)

	now := types.RelTime(0)
	for _, n := range []*meshNode{a, b, c} {
		n.core.Tick(now)
	}
	pump(t, []*meshNode{a, b, c}, now)

	require.NoError(t, a.core.QueueMessageTo(c.id, []byte{1, 2, 3}, now))
	deliveries := pump(t, []*meshNode{a, b, c}, now)

	require.Len(t, deliveries, 1)
	require.Equal(t, a.id, deliveries[0].Source)
	require.Equal(t, []byte{1, 2, 3}, deliveries[0].Payload)
}

// TestScenarioCrossZoneDiscovery is spec §8 S2: six devices in a chain
// with ZONE_RADIUS=4, so the destination sits outside the origin's
// zone and IERP flood-and-harvest discovery is required to reach it.
func TestScenarioCrossZoneDiscovery(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	nodes := make([]*meshNode, 6)
	for i := range nodes {
		nodes[i] = newMeshNode(t, net, clk, mesh.WithZoneRadius(4))
	}
	for i := 0; i < len(nodes)-1; i++ {
		net.Link(nodes[i].id, nodes[i+1].id)
	}
	trustAll(t, nodes...)

	now := types.RelTime(0)
	for _, n := range nodes {
		n.core.Tick(now)
	}
	pump(t, nodes, now)

	a, f := nodes[0], nodes[5]
	require.NoError(t, a.core.QueueMessageTo(f.id, []byte{9}, now))
	deliveries := pump(t, nodes, now)

	require.Len(t, deliveries, 1)
	require.Equal(t, a.id, deliveries[0].Source)
	require.Equal(t, []byte{9}, deliveries[0].Payload)
}

// TestScenarioRegistryConvergence is spec §8 S3: two replicas make
// concurrent, conflicting writes to the same key, then converge via
// anti-entropy sync. Both must end up agreeing on the same value for
// the contested key, determined by the registry's uuid tie-break
// rather than which write happened first; registry_test.go's
// TestConvergesRegardlessOfInsertionOrder and
// TestPermissionDeniedEntryRetainedButExcluded separately cover that
// the losing entry stays in the log and that head_hash is identical
// regardless of arrival order.
func TestScenarioRegistryConvergence(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	r1 := newMeshNode(t, net, clk)
	r2 := newMeshNode(t, net, clk)
	trust(t, r1, r2)
	trust(t, r2, r1)

	now := types.RelTime(0)
	require.NoError(t, r1.core.Set("x", []byte{1}))
	require.NoError(t, r2.core.Set("x", []byte{2}))

	require.NoError(t, r1.core.Sync(now))
	require.NoError(t, r2.core.Sync(now))
	pump(t, []*meshNode{r1, r2}, now)

	v1, ok1 := r1.core.Get("x")
	v2, ok2 := r2.core.Get("x")
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, v1, v2, "both replicas must pick the same winner by uuid tie-break")
}

// TestScenarioSetSameValueTwiceIsNoOp is spec §8's round-trip law
// `set(k, v, kp); set(k, v, kp)` ⇒ log grows by exactly one entry,
// driven through Core.Set rather than the registry package directly.
func TestScenarioSetSameValueTwiceIsNoOp(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	n := newMeshNode(t, net, clk)

	require.NoError(t, n.core.Set("k", []byte("v")))
	require.NoError(t, n.core.Set("k", []byte("v")))
	require.Equal(t, 1, n.core.EntryCount())

	v, ok := n.core.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

// TestScenarioDeleteThenDelete is spec §8 S5: set, then delete twice;
// the key must read back absent both times.
func TestScenarioDeleteThenDelete(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	n := newMeshNode(t, net, clk)

	require.NoError(t, n.core.Set("k", []byte("v")))
	require.NoError(t, n.core.Del("k"))
	require.False(t, n.core.Has("k"))
	require.Equal(t, 2, n.core.EntryCount())
	require.NoError(t, n.core.Del("k"))
	require.False(t, n.core.Has("k"))
	require.Equal(t, 2, n.core.EntryCount())
}

// TestScenarioPermissionRejectionAcrossSync is spec §8 S6, driven
// end-to-end: the owner sets "k" first; before the intruder ever
// learns that, it independently sets "k" to a different value in its
// own registry. Once the two replicas sync, the default
// creator-owns-key predicate must make both converge on the owner's
// value — whichever entry's uuid sorts first in canonical order
// establishes the key's owner, and the other replica's write is
// retained in the log but excluded from head_state on both sides.
func TestScenarioPermissionRejectionAcrossSync(t *testing.T) {
	net := testutil.NewNetwork()
	clk := testutil.NewClock()
	owner := newMeshNode(t, net, clk)
	intruder := newMeshNode(t, net, clk)
	trust(t, owner, intruder)
	trust(t, intruder, owner)

	now := types.RelTime(0)
	require.NoError(t, owner.core.Set("k", []byte("v1")))
	require.NoError(t, intruder.core.Set("k", []byte("v2")))

	require.NoError(t, owner.core.Sync(now))
	require.NoError(t, intruder.core.Sync(now))
	pump(t, []*meshNode{owner, intruder}, now)

	v1, ok1 := owner.core.Get("k")
	v2, ok2 := intruder.core.Get("k")
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, v1, v2, "both replicas must agree on the same winning value")
}
