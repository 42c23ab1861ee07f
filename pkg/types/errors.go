package types

import "errors"

var (
	// ErrInvalidDeviceID is returned when decoded bytes do not form a
	// well-sized DeviceID.
	ErrInvalidDeviceID = errors.New("types: invalid device id")

	// ErrInvalidUUID is returned when decoded bytes do not form a
	// well-sized UUID.
	ErrInvalidUUID = errors.New("types: invalid uuid")
)
