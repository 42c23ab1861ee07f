package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh/internal/core/identity"
	"github.com/meshcore/mesh/internal/testutil"
	"github.com/meshcore/mesh/pkg/lib/crypto"
	"github.com/meshcore/mesh/pkg/types"
)

func newDeviceID(t *testing.T) types.DeviceID {
	t.Helper()
	id := types.NewUUID()
	devID, ok := types.DeviceIDFromBytes(id[:])
	require.True(t, ok)
	return devID
}

func TestStoreSelfSignedTOFU(t *testing.T) {
	storage := testutil.NewMemoryStorage()
	store := identity.NewStore(storage)

	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	id := newDeviceID(t)
	pubRaw, err := pub.Raw()
	require.NoError(t, err)

	attestedBytes := append(append([]byte(nil), id[:]...), pubRaw...)
	sig, err := priv.Sign(attestedBytes)
	require.NoError(t, err)

	require.NoError(t, store.Insert(id, pubRaw, sig))

	got, ok := store.Lookup(id)
	require.True(t, ok)
	require.Equal(t, pubRaw, got)
}

func TestStoreRejectsConflictingRebinding(t *testing.T) {
	storage := testutil.NewMemoryStorage()
	store := identity.NewStore(storage)

	priv1, pub1, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	_, pub2, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	id := newDeviceID(t)
	pub1Raw, err := pub1.Raw()
	require.NoError(t, err)
	pub2Raw, err := pub2.Raw()
	require.NoError(t, err)

	sig1, err := priv1.Sign(append(append([]byte(nil), id[:]...), pub1Raw...))
	require.NoError(t, err)
	require.NoError(t, store.Insert(id, pub1Raw, sig1))

	err = store.Insert(id, pub2Raw, sig1)
	require.ErrorIs(t, err, identity.ErrIdentityConflict)

	got, ok := store.Lookup(id)
	require.True(t, ok)
	require.Equal(t, pub1Raw, got)
}

func TestStoreRejectsInvalidAttestation(t *testing.T) {
	storage := testutil.NewMemoryStorage()
	store := identity.NewStore(storage)

	_, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	pubRaw, err := pub.Raw()
	require.NoError(t, err)

	id := newDeviceID(t)
	err = store.Insert(id, pubRaw, make([]byte, 64))
	require.ErrorIs(t, err, identity.ErrAttestationInvalid)

	_, ok := store.Lookup(id)
	require.False(t, ok)
}

func TestStoreAuthorityOnlyRejectsSelfSigned(t *testing.T) {
	storage := testutil.NewMemoryStorage()
	_, authorityPub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	authorityRaw, err := authorityPub.Raw()
	require.NoError(t, err)

	store := identity.NewStore(storage, identity.WithAuthorityKey(authorityRaw))

	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	pubRaw, err := pub.Raw()
	require.NoError(t, err)

	id := newDeviceID(t)
	sig, err := priv.Sign(append(append([]byte(nil), id[:]...), pubRaw...))
	require.NoError(t, err)

	err = store.Insert(id, pubRaw, sig)
	require.ErrorIs(t, err, identity.ErrAttestationInvalid)
}
