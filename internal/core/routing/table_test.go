package routing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh/internal/core/routing"
	"github.com/meshcore/mesh/pkg/types"
)

func deviceID(b byte) types.DeviceID {
	var id types.DeviceID
	id[0] = b
	return id
}

func TestTableInsertAndLookup(t *testing.T) {
	table := routing.NewTable(4)
	peer := deviceID(1)
	hop := deviceID(2)

	table.Insert(peer, hop, 2, 0, 1000)

	e, ok := table.Lookup(peer, 500)
	require.True(t, ok)
	require.Equal(t, uint8(2), e.HopCount)
	require.Equal(t, hop, e.NextHop)
}

func TestTableInsertDropsBeyondZoneRadius(t *testing.T) {
	table := routing.NewTable(4)
	peer := deviceID(1)
	hop := deviceID(2)

	table.Insert(peer, hop, 5, 0, 1000)

	_, ok := table.Lookup(peer, 0)
	require.False(t, ok)
}

func TestTableLookupPrefersMinHopCount(t *testing.T) {
	table := routing.NewTable(4)
	peer := deviceID(1)
	hopA := deviceID(2)
	hopB := deviceID(3)

	table.Insert(peer, hopA, 3, 0, 1000)
	table.Insert(peer, hopB, 1, 0, 1000)

	e, ok := table.Lookup(peer, 0)
	require.True(t, ok)
	require.Equal(t, hopB, e.NextHop)
}

func TestTableSweepRemovesExpired(t *testing.T) {
	table := routing.NewTable(4)
	peer := deviceID(1)
	hop := deviceID(2)

	table.Insert(peer, hop, 1, 0, 100)
	table.Sweep(200)

	_, ok := table.Lookup(peer, 200)
	require.False(t, ok)
}

func TestTableInvalidateRemovesByNextHop(t *testing.T) {
	table := routing.NewTable(4)
	peerA := deviceID(1)
	peerB := deviceID(2)
	hop := deviceID(9)

	table.Insert(peerA, hop, 1, 0, 1000)
	table.Insert(peerB, hop, 2, 0, 1000)

	table.Invalidate(hop)

	_, okA := table.Lookup(peerA, 0)
	_, okB := table.Lookup(peerB, 0)
	require.False(t, okA)
	require.False(t, okB)
}

func TestTableRefreshesExpiryOnRepeatedInsert(t *testing.T) {
	table := routing.NewTable(4)
	peer := deviceID(1)
	hop := deviceID(2)

	table.Insert(peer, hop, 1, 0, 100)
	table.Insert(peer, hop, 1, 50, 100)

	e, ok := table.Lookup(peer, 120)
	require.True(t, ok)
	require.Equal(t, types.RelTime(150), e.ExpiresAt)
}
