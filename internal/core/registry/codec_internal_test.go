package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore/mesh/pkg/interfaces"
	"github.com/meshcore/mesh/pkg/types"
)

func TestEncodeDecodeEntryRoundTrip(t *testing.T) {
	e := Entry[[]byte]{
		UUID:       types.NewUUID(),
		ParentUUID: types.EmptyUUID,
		Kind:       Upsert,
		Key:        "alpha",
		Value:      []byte("hello"),
		PublicKey:  []byte{1, 2, 3, 4},
		Signature:  []byte{5, 6, 7, 8, 9},
		Timestamp:  types.RelTime(12345),
	}

	encoded, err := encodeEntry(e, BytesCodec{})
	require.NoError(t, err)

	decoded, err := decodeEntry(encoded, BytesCodec{})
	require.NoError(t, err)

	require.Equal(t, e, decoded)
}

func TestSignedBytesExcludesSignature(t *testing.T) {
	e := Entry[[]byte]{
		UUID:       types.NewUUID(),
		ParentUUID: types.EmptyUUID,
		Kind:       Upsert,
		Key:        "alpha",
		Value:      []byte("hello"),
		PublicKey:  []byte{1, 2, 3, 4},
		Timestamp:  types.RelTime(12345),
	}

	a, err := signedBytes(e, BytesCodec{})
	require.NoError(t, err)

	e.Signature = []byte{9, 9, 9}
	b, err := signedBytes(e, BytesCodec{})
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestCanonicalOrderSiblingsSortedByUUID(t *testing.T) {
	keys := fakeVerifier{}
	clk := fakeClock{}
	r := NewRegistry[[]byte]("test", BytesCodec{}, AlwaysAllow[[]byte], keys, clk)

	uuids := []types.UUID{types.NewUUID(), types.NewUUID(), types.NewUUID()}
	for _, u := range uuids {
		e := Entry[[]byte]{UUID: u, ParentUUID: types.EmptyUUID, Kind: Upsert, Key: u.String(), Value: []byte("v")}
		require.NoError(t, r.AddEntry(e))
	}

	order := r.canonicalOrder()
	require.Len(t, order, 3)
	for i := 1; i < len(order); i++ {
		require.True(t, order[i-1].Compare(order[i]) < 0)
	}
}

type fakeVerifier struct{}

func (fakeVerifier) OwnKeys() interfaces.KeyPair             { return interfaces.KeyPair{} }
func (fakeVerifier) Sign(msg []byte) ([]byte, error)          { return nil, nil }
func (fakeVerifier) Verify(publicKey, msg, sig []byte) bool   { return true }

type fakeClock struct{}

func (fakeClock) Now() types.RelTime { return 0 }
