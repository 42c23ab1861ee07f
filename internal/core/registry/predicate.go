package registry

import "bytes"

// Predicate decides whether the entry at index i is allowed to take
// effect on head_state, given the full canonical-order entry list. It
// must be a pure function with no registry-mutation escape hatch — this
// is a closed, pattern-matched set of predicates rather than an
// embedded scripting sandbox, since the predicates an embedder needs
// (creator-owns-key, authority-signed, always-allow) are enumerable.
type Predicate[V any] func(entries []Entry[V], i int) bool

// CreatorOwnsKey is the default predicate: the first entry for a key, by
// canonical order, establishes its owner and always passes; any later
// entry for that key passes only if it was signed by the owner's public
// key.
func CreatorOwnsKey[V any](entries []Entry[V], i int) bool {
	key := entries[i].Key
	for j := 0; j < i; j++ {
		if entries[j].Key == key {
			return bytes.Equal(entries[j].PublicKey, entries[i].PublicKey)
		}
	}
	return true
}

// AuthoritySigned accepts only entries signed by rootKey.
func AuthoritySigned[V any](rootKey []byte) Predicate[V] {
	return func(entries []Entry[V], i int) bool {
		return bytes.Equal(entries[i].PublicKey, rootKey)
	}
}

// AlwaysAllow accepts every entry whose signature verifies.
func AlwaysAllow[V any](_ []Entry[V], _ int) bool {
	return true
}
