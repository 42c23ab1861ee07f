package types

import (
	"bytes"

	"github.com/google/uuid"
)

// UUIDSize is the byte length of a UUID.
const UUIDSize = 16

// UUID identifies a registry entry. It is content-independent: two
// entries with identical fields still carry distinct UUIDs.
type UUID [UUIDSize]byte

// EmptyUUID is the sentinel parent_uuid for a root registry entry.
var EmptyUUID = UUID{}

// NewUUID generates a fresh random UUID (version 4).
func NewUUID() UUID {
	var id UUID
	generated := uuid.New()
	copy(id[:], generated[:])
	return id
}

// IsEmpty reports whether id is the EmptyUUID sentinel.
func (id UUID) IsEmpty() bool {
	return id == EmptyUUID
}

// Compare returns -1, 0 or 1 as id is less than, equal to, or greater
// than other, using lexicographic byte order. This is the tie-break
// used by the registry's canonical sibling ordering.
func (id UUID) Compare(other UUID) int {
	return bytes.Compare(id[:], other[:])
}

// Less reports whether id sorts before other.
func (id UUID) Less(other UUID) bool {
	return id.Compare(other) < 0
}

// String returns the canonical hyphenated UUID representation.
func (id UUID) String() string {
	return uuid.UUID(id).String()
}

// ParseUUID decodes a hyphenated UUID string.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}
	return UUID(u), nil
}

// UUIDFromBytes builds a UUID from exactly UUIDSize bytes.
func UUIDFromBytes(b []byte) (UUID, bool) {
	var id UUID
	if len(b) != UUIDSize {
		return id, false
	}
	copy(id[:], b)
	return id, true
}
