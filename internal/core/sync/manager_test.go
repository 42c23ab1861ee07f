package sync_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh/internal/core/sync"
	"github.com/meshcore/mesh/pkg/types"
	"github.com/meshcore/mesh/pkg/wire"
)

func wireRequest(name string, requestID types.UUID, index uint32) wire.RegistryHashRequest {
	return wire.RegistryHashRequest{Name: name, RequestID: requestID, Index: index}
}

func wireReply(req wire.RegistryHashRequest, hash types.Hash) wire.RegistryHashReply {
	return wire.RegistryHashReply{Name: req.Name, RequestID: req.RequestID, Index: req.Index, Hash: hash}
}

func peerID(t *testing.T, n byte) types.DeviceID {
	t.Helper()
	var b [types.DeviceIDSize]byte
	b[0] = n
	id, ok := types.DeviceIDFromBytes(b[:])
	require.True(t, ok)
	return id
}

// fakeLog models a replica's rolling chain hash at each canonical-order
// index as the hash of that index's byte, which is enough to exercise
// the binary search without pulling in a real registry.
type fakeLog []types.Hash

func newFakeLog(n int) fakeLog {
	out := make(fakeLog, n)
	for i := range out {
		out[i] = types.SumHash([]byte{byte(i)})
	}
	return out
}

func (l fakeLog) at(i uint32) (types.Hash, bool) {
	if int(i) >= len(l) {
		return types.Hash{}, false
	}
	return l[i], true
}

func TestStartReturnsNilWhenNothingToProbe(t *testing.T) {
	m := sync.NewManager("test", types.RelTime(1000))
	peer := peerID(t, 1)

	req, err := m.Start(peer, 0, 5, types.RelTime(0))
	require.NoError(t, err)
	require.Nil(t, req)
	require.False(t, m.InProgress(peer, types.RelTime(0)))
}

func TestStartRejectsConcurrentSessionForSamePeer(t *testing.T) {
	m := sync.NewManager("test", types.RelTime(1000))
	peer := peerID(t, 1)

	_, err := m.Start(peer, 10, 10, types.RelTime(0))
	require.NoError(t, err)

	_, err = m.Start(peer, 10, 10, types.RelTime(100))
	require.ErrorIs(t, err, sync.ErrSyncInProgress)
}

func TestBinarySearchConvergesOnDivergenceIndex(t *testing.T) {
	local := newFakeLog(16)
	remote := newFakeLog(16)
	// Replicas agree up through index 9; since each index's hash chains
	// from the one before it, a divergence at index 10 propagates to
	// every later index too.
	for i := 10; i < len(remote); i++ {
		remote[i] = types.SumHash([]byte{byte(i), 0xff})
	}

	m := sync.NewManager("test", types.RelTime(1000))
	peer := peerID(t, 1)

	req, err := m.Start(peer, 16, 16, types.RelTime(0))
	require.NoError(t, err)
	require.NotNil(t, req)

	var divergedAt *uint32
	for i := 0; i < 10; i++ {
		require.Nil(t, divergedAt, "converged earlier than expected")
		h, ok := remote.at(req.Index)
		require.True(t, ok)
		reply := wireReply(*req, h)
		req, divergedAt = m.HandleHashReply(peer, reply, types.RelTime(0), local.at)
		if divergedAt != nil {
			break
		}
		require.NotNil(t, req)
	}

	require.NotNil(t, divergedAt)
	require.Equal(t, uint32(10), *divergedAt)
	require.Equal(t, sync.Transferring, m.State(peer))
}

func TestHandleHashReplyIgnoresStaleOrMismatchedSession(t *testing.T) {
	local := newFakeLog(8)
	m := sync.NewManager("test", types.RelTime(1000))
	peer := peerID(t, 1)

	req, err := m.Start(peer, 8, 8, types.RelTime(0))
	require.NoError(t, err)

	h, _ := local.at(req.Index)
	stale := wireReply(*req, h)
	stale.RequestID = types.NewUUID()

	next, at := m.HandleHashReply(peer, stale, types.RelTime(0), local.at)
	require.Nil(t, next)
	require.Nil(t, at)
}

func TestTickExpiresOverdueSessions(t *testing.T) {
	m := sync.NewManager("test", types.RelTime(100))
	peer := peerID(t, 1)

	_, err := m.Start(peer, 8, 8, types.RelTime(0))
	require.NoError(t, err)
	require.True(t, m.InProgress(peer, types.RelTime(50)))

	expired := m.Tick(types.RelTime(200))
	require.Equal(t, []types.DeviceID{peer}, expired)
	require.False(t, m.InProgress(peer, types.RelTime(200)))
	require.Equal(t, sync.Idle, m.State(peer))
}

func TestCompleteResetsToIdle(t *testing.T) {
	m := sync.NewManager("test", types.RelTime(1000))
	peer := peerID(t, 1)

	_, err := m.Start(peer, 8, 8, types.RelTime(0))
	require.NoError(t, err)

	m.Complete(peer)
	require.Equal(t, sync.Idle, m.State(peer))
	require.False(t, m.InProgress(peer, types.RelTime(0)))
}

func TestRespondToHashRequestIsStatelessAndIndependentOfManager(t *testing.T) {
	local := newFakeLog(4)
	req := wireRequest("test", types.NewUUID(), 2)

	reply, ok := sync.RespondToHashRequest("test", req, local.at)
	require.True(t, ok)
	require.Equal(t, req.RequestID, reply.RequestID)
	require.Equal(t, uint32(2), reply.Index)
	h, _ := local.at(2)
	require.True(t, h.Equal(reply.Hash))
}

func TestRespondToHashRequestFailsPastLogEnd(t *testing.T) {
	local := newFakeLog(4)
	req := wireRequest("test", types.NewUUID(), 9)

	_, ok := sync.RespondToHashRequest("test", req, local.at)
	require.False(t, ok)
}
