package types

import (
	"bytes"

	"github.com/mr-tron/base58"
)

// DeviceIDSize is the byte length of a DeviceID (128 bits).
const DeviceIDSize = 16

// DeviceID is a stable, globally unique 128-bit identifier for a device
// on the mesh. It never changes for the lifetime of the device.
type DeviceID [DeviceIDSize]byte

// DeviceIDFromBytes builds a DeviceID from exactly DeviceIDSize bytes.
func DeviceIDFromBytes(b []byte) (DeviceID, bool) {
	var id DeviceID
	if len(b) != DeviceIDSize {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

// IsZero reports whether id is the zero DeviceID.
func (id DeviceID) IsZero() bool {
	return id == DeviceID{}
}

// Compare returns -1, 0 or 1 as id is less than, equal to, or greater
// than other, using lexicographic byte order.
func (id DeviceID) Compare(other DeviceID) int {
	return bytes.Compare(id[:], other[:])
}

// Less reports whether id sorts before other.
func (id DeviceID) Less(other DeviceID) bool {
	return id.Compare(other) < 0
}

// String returns the base58 encoding of id.
func (id DeviceID) String() string {
	return base58.Encode(id[:])
}

// ParseDeviceID decodes a base58-encoded DeviceID.
func ParseDeviceID(s string) (DeviceID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return DeviceID{}, err
	}
	id, ok := DeviceIDFromBytes(b)
	if !ok {
		return DeviceID{}, ErrInvalidDeviceID
	}
	return id, nil
}
