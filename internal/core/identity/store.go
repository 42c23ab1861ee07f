package identity

import (
	"encoding/json"
	"fmt"

	"github.com/meshcore/mesh/pkg/interfaces"
	"github.com/meshcore/mesh/pkg/lib/crypto"
	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
)

var logger = log.Logger("identity")

const storageKeyPrefix = "credentials::"

// binding is the persisted record for a single device: its public key
// and the attestation that vouched for it.
type binding struct {
	PublicKey    []byte `json:"public_key"`
	Attestation  []byte `json:"attestation"`
	SelfAttested bool   `json:"self_attested"`
}

// Store is the Credentials Store: a DeviceID -> PublicKey binding that,
// once established, never changes for the device's lifetime.
type Store struct {
	cfg     Config
	storage interfaces.Storage
	cache   map[types.DeviceID]binding
}

// NewStore builds a Credentials Store backed by storage.
func NewStore(storage interfaces.Storage, opts ...Option) *Store {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		cfg:     cfg,
		storage: storage,
		cache:   make(map[types.DeviceID]binding),
	}
}

// Lookup returns the public key bound to id, if any.
func (s *Store) Lookup(id types.DeviceID) ([]byte, bool) {
	if b, ok := s.cache[id]; ok {
		return b.PublicKey, true
	}

	raw, ok := s.storage.Get(storageKey(id))
	if !ok {
		return nil, false
	}
	var b binding
	if err := json.Unmarshal(raw, &b); err != nil {
		logger.Warn("corrupt credential record", "device", id, "error", err)
		return nil, false
	}
	s.cache[id] = b
	return b.PublicKey, true
}

// Insert binds id to publicKey, vouched for by attestation: a signature
// over (id || publicKey) produced either by publicKey itself
// (trust-on-first-use) or by the store's configured authority key.
//
// If id is already bound to a different key, the existing binding is
// preserved and ErrIdentityConflict is returned.
func (s *Store) Insert(id types.DeviceID, publicKey, attestation []byte) error {
	if existing, ok := s.Lookup(id); ok {
		if !bytesEqual(existing, publicKey) {
			return fmt.Errorf("%w: device %s", ErrIdentityConflict, id)
		}
		return nil
	}

	signedBytes := attestedBytes(id, publicKey)

	selfAttested := false
	switch {
	case len(s.cfg.AuthorityKey) > 0:
		if !verify(s.cfg.AuthorityKey, signedBytes, attestation) {
			return fmt.Errorf("%w: device %s", ErrAttestationInvalid, id)
		}
	default:
		if !verify(publicKey, signedBytes, attestation) {
			return fmt.Errorf("%w: device %s", ErrAttestationInvalid, id)
		}
		selfAttested = true
	}

	b := binding{
		PublicKey:    append([]byte(nil), publicKey...),
		Attestation:  append([]byte(nil), attestation...),
		SelfAttested: selfAttested,
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("identity: marshal binding: %w", err)
	}
	s.storage.Set(storageKey(id), raw)
	s.cache[id] = b
	logger.Info("bound device credential", "device", id, "self_attested", selfAttested)
	return nil
}

func attestedBytes(id types.DeviceID, publicKey []byte) []byte {
	buf := make([]byte, 0, types.DeviceIDSize+len(publicKey))
	buf = append(buf, id[:]...)
	buf = append(buf, publicKey...)
	return buf
}

func verify(publicKey, msg, sig []byte) bool {
	pub, err := crypto.UnmarshalEd25519PublicKey(publicKey)
	if err != nil {
		return false
	}
	ok, err := pub.Verify(msg, sig)
	return err == nil && ok
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func storageKey(id types.DeviceID) []byte {
	return []byte(storageKeyPrefix + id.String())
}
