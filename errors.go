package mesh

import "errors"

var (
	// ErrUnknownRegistryName is returned when a registry frame names a
	// registry other than the single one this Core hosts.
	ErrUnknownRegistryName = errors.New("mesh: unknown registry name")
)
