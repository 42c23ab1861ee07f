package interfaces

import "github.com/meshcore/mesh/pkg/types"

// RelTimeProvider supplies monotonic relative time to the core. The core
// never calls time.Now or time.Since directly; every expiry, timeout and
// interval is computed against a value obtained from this interface, so
// that tests can drive the clock deterministically.
type RelTimeProvider interface {
	// Now returns the current relative time in monotonic milliseconds.
	Now() types.RelTime
}
