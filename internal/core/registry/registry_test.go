package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh/internal/core/registry"
	"github.com/meshcore/mesh/internal/testutil"
	"github.com/meshcore/mesh/pkg/types"
)

func newReg(keys *testutil.KeyProvider, clk *testutil.Clock) *registry.Registry[[]byte] {
	return registry.NewRegistry[[]byte]("test", registry.BytesCodec{}, registry.CreatorOwnsKey[[]byte], keys, clk)
}

func TestSetThenGet(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())

	require.NoError(t, r.Set("alpha", []byte("1")))
	v, ok := r.Get("alpha")
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestSetOverwritesSameKey(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())

	require.NoError(t, r.Set("alpha", []byte("1")))
	require.NoError(t, r.Set("alpha", []byte("2")))

	v, ok := r.Get("alpha")
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
	require.Equal(t, 2, r.EntryCount())
}

func TestDelRemovesKey(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())

	require.NoError(t, r.Set("alpha", []byte("1")))
	require.NoError(t, r.Del("alpha"))
	require.False(t, r.Has("alpha"))
}

func TestSetSameValueTwiceIsNoOp(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())

	require.NoError(t, r.Set("alpha", []byte("1")))
	require.NoError(t, r.Set("alpha", []byte("1")))

	v, ok := r.Get("alpha")
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
	require.Equal(t, 1, r.EntryCount())
}

func TestDelThenDelIsNoOp(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())

	require.NoError(t, r.Set("alpha", []byte("1")))
	require.NoError(t, r.Del("alpha"))
	require.NoError(t, r.Del("alpha"))

	require.False(t, r.Has("alpha"))
	require.Equal(t, 2, r.EntryCount())
}

func TestAddSerializedEntryAlreadyPresent(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())
	require.NoError(t, r.Set("alpha", []byte("1")))

	raw, ok := r.EncodeEntryAt(0)
	require.True(t, ok)

	err := r.AddSerializedEntry(raw)
	require.ErrorIs(t, err, registry.ErrAlreadyPresent)
}

func TestAddEntryOrphanRejected(t *testing.T) {
	keys := testutil.NewKeyProvider()
	clk := testutil.NewClock()
	r := newReg(keys, clk)

	e := registry.Entry[[]byte]{
		UUID:       types.NewUUID(),
		ParentUUID: types.NewUUID(),
		Kind:       registry.Upsert,
		Key:        "alpha",
		Value:      []byte("1"),
		PublicKey:  keys.OwnKeys().PublicKey,
		Timestamp:  clk.Now(),
	}
	require.ErrorIs(t, r.AddEntry(e), registry.ErrOrphan)
}

func TestInvalidSignatureRetainedButExcludedFromHeadState(t *testing.T) {
	keys := testutil.NewKeyProvider()
	clk := testutil.NewClock()
	r := newReg(keys, clk)

	e := registry.Entry[[]byte]{
		UUID:       types.NewUUID(),
		ParentUUID: types.EmptyUUID,
		Kind:       registry.Upsert,
		Key:        "alpha",
		Value:      []byte("1"),
		PublicKey:  keys.OwnKeys().PublicKey,
		Signature:  []byte("not a valid signature"),
		Timestamp:  clk.Now(),
	}
	require.NoError(t, r.AddEntry(e))
	require.Equal(t, 1, r.EntryCount())
	require.False(t, r.Has("alpha"))
}

func TestPermissionDeniedEntryRetainedButExcluded(t *testing.T) {
	authority := testutil.NewKeyProvider()
	intruder := testutil.NewKeyProvider()
	clk := testutil.NewClock()

	r := registry.NewRegistry[[]byte](
		"test",
		registry.BytesCodec{},
		registry.AuthoritySigned[[]byte](authority.OwnKeys().PublicKey),
		intruder,
		clk,
	)

	err := r.Set("alpha", []byte("1"))
	require.ErrorIs(t, err, registry.ErrPermissionDenied)
	require.Equal(t, 1, r.EntryCount())
	require.False(t, r.Has("alpha"))
}

func TestConvergesRegardlessOfInsertionOrder(t *testing.T) {
	keys := testutil.NewKeyProvider()
	clk := testutil.NewClock()

	source := newReg(keys, clk)
	require.NoError(t, source.Set("alpha", []byte("1")))
	require.NoError(t, source.Set("beta", []byte("2")))
	require.NoError(t, source.Set("alpha", []byte("3")))
	require.NoError(t, source.Del("beta"))

	all := source.EncodeEntriesFrom(0)
	require.Len(t, all, 4)

	forward := newReg(keys, clk)
	_, err := forward.AddSerializedEntries(all)
	require.NoError(t, err)

	reversed := make([][]byte, len(all))
	for i, e := range all {
		reversed[len(all)-1-i] = e
	}
	backward := newReg(keys, clk)
	_, err = backward.AddSerializedEntries(reversed)
	require.NoError(t, err)

	require.Equal(t, source.GetHeadHash(), forward.GetHeadHash())
	require.Equal(t, source.GetHeadHash(), backward.GetHeadHash())

	va, _ := forward.Get("alpha")
	vb, _ := backward.Get("alpha")
	require.Equal(t, va, vb)
	require.False(t, forward.Has("beta"))
	require.False(t, backward.Has("beta"))
}

func TestAddEntriesResolvesBatchOrphansTransitively(t *testing.T) {
	keys := testutil.NewKeyProvider()
	clk := testutil.NewClock()

	source := newReg(keys, clk)
	require.NoError(t, source.Set("alpha", []byte("1")))
	require.NoError(t, source.Set("alpha", []byte("2")))
	require.NoError(t, source.Set("alpha", []byte("3")))
	all := source.EncodeEntriesFrom(0)
	require.Len(t, all, 3)

	// Feed child-before-parent within a single batch; the fixed-point
	// loop must still land every entry.
	shuffled := [][]byte{all[2], all[0], all[1]}
	dest := newReg(keys, clk)
	added, err := dest.AddSerializedEntries(shuffled)
	require.NoError(t, err)
	require.Equal(t, 3, added)
	require.Equal(t, source.GetHeadHash(), dest.GetHeadHash())
}

func TestClearIsLocalOnly(t *testing.T) {
	r := newReg(testutil.NewKeyProvider(), testutil.NewClock())
	require.NoError(t, r.Set("alpha", []byte("1")))

	r.Clear()
	require.Equal(t, 0, r.EntryCount())
	require.False(t, r.Has("alpha"))
	require.True(t, r.GetHeadHash().IsZero())
}
