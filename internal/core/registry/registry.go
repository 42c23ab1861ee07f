package registry

import (
	"reflect"
	"sort"

	"github.com/meshcore/mesh/pkg/interfaces"
	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
)

var logger = log.Logger("registry")

// Registry is the Replicated Signed Registry Core for a single named
// key space. It owns the append-only entry log, the canonical-order
// tree, and the materialized head_state. Every public method runs to
// completion synchronously; there is no internal goroutine.
type Registry[V any] struct {
	name      string
	codec     Codec[V]
	predicate Predicate[V]
	keys      interfaces.KeyProvider
	clock     interfaces.RelTimeProvider

	children map[types.UUID][]types.UUID
	byUUID   map[types.UUID]*Entry[V]

	entryOrder     []types.UUID
	valid          map[types.UUID]bool
	headState      map[string]V
	headSourceUUID map[string]types.UUID
	headSourceKind map[string]Kind
	headHash       types.Hash

	instanceID types.UUID
}

// NewRegistry constructs an empty registry. predicate governs which
// entries take effect on head_state; CreatorOwnsKey is the usual
// choice absent a stronger requirement.
func NewRegistry[V any](name string, codec Codec[V], predicate Predicate[V], keys interfaces.KeyProvider, clock interfaces.RelTimeProvider) *Registry[V] {
	return &Registry[V]{
		name:           name,
		codec:          codec,
		predicate:      predicate,
		keys:           keys,
		clock:          clock,
		children:       make(map[types.UUID][]types.UUID),
		byUUID:         make(map[types.UUID]*Entry[V]),
		valid:          make(map[types.UUID]bool),
		headState:      make(map[string]V),
		headSourceUUID: make(map[string]types.UUID),
		headSourceKind: make(map[string]Kind),
		instanceID:     types.NewUUID(),
	}
}

// Name returns the registry's identifying name, as carried on the wire
// in RegistryHead/RegistryEntries frames.
func (r *Registry[V]) Name() string {
	return r.name
}

// InstanceID identifies this particular in-memory replica, distinct
// from any other replica that happens to hold an identical entry set.
// It is generated once at construction and carried on RegistryHead
// announcements; Clear does not change it, since clearing is a local
// administrative reset of the same replica, not a new one.
func (r *Registry[V]) InstanceID() types.UUID {
	return r.instanceID
}

// AddEntry inserts a single entry into the log. The parent must be
// EmptyUUID or an entry already present, otherwise ErrOrphan is
// returned; a duplicate UUID returns ErrAlreadyPresent. On success
// head_state is recomputed before returning.
func (r *Registry[V]) AddEntry(e Entry[V]) error {
	if _, exists := r.byUUID[e.UUID]; exists {
		return ErrAlreadyPresent
	}
	if !e.ParentUUID.IsEmpty() {
		if _, ok := r.byUUID[e.ParentUUID]; !ok {
			return ErrOrphan
		}
	}
	r.insertStructural(e)
	r.recomputeHead()
	return nil
}

// AddEntries integrates a batch, resolving orphans that become
// reachable as earlier entries in the batch land, in a fixed-point
// loop. Entries that never resolve are dropped silently — this is the
// bulk counterpart to AddEntry and is the shape anti-entropy transfers
// use. head_state is recomputed once, after the whole batch lands.
func (r *Registry[V]) AddEntries(entries []Entry[V]) int {
	pending := entries
	added := 0
	for len(pending) > 0 {
		var stillPending []Entry[V]
		progressed := false
		for _, e := range pending {
			if _, exists := r.byUUID[e.UUID]; exists {
				progressed = true
				continue
			}
			if !e.ParentUUID.IsEmpty() {
				if _, ok := r.byUUID[e.ParentUUID]; !ok {
					stillPending = append(stillPending, e)
					continue
				}
			}
			r.insertStructural(e)
			added++
			progressed = true
		}
		if !progressed {
			if len(stillPending) > 0 {
				logger.Debug("dropping unresolved orphans", "registry", r.name, "count", len(stillPending))
			}
			break
		}
		pending = stillPending
	}
	r.recomputeHead()
	return added
}

func (r *Registry[V]) insertStructural(e Entry[V]) {
	stored := e
	r.byUUID[e.UUID] = &stored

	siblings := r.children[e.ParentUUID]
	idx := sort.Search(len(siblings), func(i int) bool {
		return siblings[i].Compare(e.UUID) >= 0
	})
	siblings = append(siblings, types.UUID{})
	copy(siblings[idx+1:], siblings[idx:])
	siblings[idx] = e.UUID
	r.children[e.ParentUUID] = siblings
}

// canonicalOrder walks the tree in pre-order, starting at the empty
// UUID. Entries with no parent are ordinary children of that virtual
// root, so multiple simultaneous root entries sort by ascending UUID
// exactly like any other sibling group.
func (r *Registry[V]) canonicalOrder() []types.UUID {
	var order []types.UUID
	var walk func(parent types.UUID)
	walk = func(parent types.UUID) {
		for _, child := range r.children[parent] {
			order = append(order, child)
			walk(child)
		}
	}
	walk(types.EmptyUUID)
	return order
}

func (r *Registry[V]) recomputeHead() {
	order := r.canonicalOrder()
	r.entryOrder = order

	entriesSlice := make([]Entry[V], len(order))
	for i, id := range order {
		entriesSlice[i] = *r.byUUID[id]
	}

	headState := make(map[string]V)
	headSource := make(map[string]types.UUID)
	headKind := make(map[string]Kind)
	valid := make(map[types.UUID]bool, len(entriesSlice))
	prev := types.Hash{}

	for i, e := range entriesSlice {
		if eb, err := signedBytes(e, r.codec); err == nil {
			prev = types.ChainHash(eb, prev)
		}

		ok := r.isValidAt(entriesSlice, i)
		valid[e.UUID] = ok
		if !ok {
			continue
		}
		switch e.Kind {
		case Upsert:
			headState[e.Key] = e.Value
			headSource[e.Key] = e.UUID
			headKind[e.Key] = e.Kind
		case Delete:
			delete(headState, e.Key)
			headSource[e.Key] = e.UUID
			headKind[e.Key] = e.Kind
		}
	}

	r.valid = valid
	r.headState = headState
	r.headSourceUUID = headSource
	r.headSourceKind = headKind
	r.headHash = prev
}

func (r *Registry[V]) isValidAt(entries []Entry[V], i int) bool {
	e := entries[i]
	eb, err := signedBytes(e, r.codec)
	if err != nil {
		return false
	}
	if !r.keys.Verify(e.PublicKey, eb, e.Signature) {
		return false
	}
	return r.predicate(entries, i)
}

// Set appends a signed Upsert entry for key, parented on whichever
// entry currently sources key's head_state value (or on the empty
// UUID for a brand new key). The entry is retained even when it fails
// its own verification: ErrSignatureVerificationFailed and
// ErrPermissionDenied report that without rolling back the insert.
//
// If head_state already maps key to an equal value, Set is a no-op:
// no entry is appended and the log does not grow.
func (r *Registry[V]) Set(key string, value V) error {
	if current, ok := r.headState[key]; ok && reflect.DeepEqual(current, value) {
		return nil
	}
	return r.append(key, Upsert, value)
}

// Del appends a signed Delete entry for key. A Del on a key that was
// never set is a well-formed no-op at the head_state level, but still
// lands in the log. A Del on a key whose most recent effective entry
// is already a Delete is suppressed entirely: no entry is appended and
// the log does not grow, mirroring Set's duplicate suppression.
func (r *Registry[V]) Del(key string) error {
	if r.headSourceKind[key] == Delete {
		return nil
	}
	var zero V
	return r.append(key, Delete, zero)
}

func (r *Registry[V]) append(key string, kind Kind, value V) error {
	parent := types.EmptyUUID
	if src, ok := r.headSourceUUID[key]; ok {
		parent = src
	}

	own := r.keys.OwnKeys()
	e := Entry[V]{
		UUID:       types.NewUUID(),
		ParentUUID: parent,
		Kind:       kind,
		Key:        key,
		Value:      value,
		PublicKey:  own.PublicKey,
		Timestamp:  r.clock.Now(),
	}

	toSign, err := signedBytes(e, r.codec)
	if err != nil {
		return err
	}
	sig, err := r.keys.Sign(toSign)
	if err != nil {
		return err
	}
	e.Signature = sig

	if err := r.AddEntry(e); err != nil {
		return err
	}
	if r.valid[e.UUID] {
		return nil
	}

	eb, err := signedBytes(e, r.codec)
	if err != nil || !r.keys.Verify(e.PublicKey, eb, e.Signature) {
		return ErrSignatureVerificationFailed
	}
	return ErrPermissionDenied
}

// Get returns key's current head_state value.
func (r *Registry[V]) Get(key string) (V, bool) {
	v, ok := r.headState[key]
	return v, ok
}

// Has reports whether key is present in head_state.
func (r *Registry[V]) Has(key string) bool {
	_, ok := r.headState[key]
	return ok
}

// Clear resets the registry to empty. This is strictly local: it
// produces no entry and has no effect on peers, unlike Del.
func (r *Registry[V]) Clear() {
	r.children = make(map[types.UUID][]types.UUID)
	r.byUUID = make(map[types.UUID]*Entry[V])
	r.entryOrder = nil
	r.valid = make(map[types.UUID]bool)
	r.headState = make(map[string]V)
	r.headSourceUUID = make(map[string]types.UUID)
	r.headSourceKind = make(map[string]Kind)
	r.headHash = types.Hash{}
}

// GetHeadHash returns the rolling hash over every entry in canonical
// order, valid or not. Two registries with the same entry set, however
// they arrived, converge on the same head hash.
func (r *Registry[V]) GetHeadHash() types.Hash {
	return r.headHash
}

// EntryCount returns the number of entries currently in the log.
func (r *Registry[V]) EntryCount() int {
	return len(r.entryOrder)
}

// ChainHashAt returns the rolling hash chain value through
// canonical-order index i inclusive, over every entry regardless of
// validity. The anti-entropy sync session probes this per index to
// binary-search the first point of divergence between two replicas.
func (r *Registry[V]) ChainHashAt(i int) (types.Hash, bool) {
	if i < 0 || i >= len(r.entryOrder) {
		return types.Hash{}, false
	}
	prev := types.Hash{}
	for j := 0; j <= i; j++ {
		e := r.byUUID[r.entryOrder[j]]
		eb, err := signedBytes(*e, r.codec)
		if err != nil {
			continue
		}
		prev = types.ChainHash(eb, prev)
	}
	return prev, true
}

// EncodeEntryAt serializes the entry at canonical-order index i, for
// anti-entropy transport.
func (r *Registry[V]) EncodeEntryAt(i int) ([]byte, bool) {
	if i < 0 || i >= len(r.entryOrder) {
		return nil, false
	}
	e := r.byUUID[r.entryOrder[i]]
	b, err := encodeEntry(*e, r.codec)
	if err != nil {
		return nil, false
	}
	return b, true
}

// EncodeEntriesFrom serializes every entry from canonical-order index
// start onward, for a RegistryEntries transfer.
func (r *Registry[V]) EncodeEntriesFrom(start int) [][]byte {
	if start < 0 {
		start = 0
	}
	var out [][]byte
	for i := start; i < len(r.entryOrder); i++ {
		if b, ok := r.EncodeEntryAt(i); ok {
			out = append(out, b)
		}
	}
	return out
}

// AddSerializedEntry decodes and inserts a single wire-format entry.
func (r *Registry[V]) AddSerializedEntry(data []byte) error {
	e, err := decodeEntry(data, r.codec)
	if err != nil {
		return err
	}
	return r.AddEntry(e)
}

// AddSerializedEntries decodes and bulk-inserts wire-format entries,
// e.g. the payload of a RegistryEntries frame.
func (r *Registry[V]) AddSerializedEntries(datas [][]byte) (int, error) {
	entries := make([]Entry[V], 0, len(datas))
	for _, data := range datas {
		e, err := decodeEntry(data, r.codec)
		if err != nil {
			return 0, err
		}
		entries = append(entries, e)
	}
	return r.AddEntries(entries), nil
}
