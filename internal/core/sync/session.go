package sync

import "github.com/meshcore/mesh/pkg/types"

// State is a sync session's position in the Idle -> Probing ->
// Transferring -> Idle cycle.
type State int

const (
	Idle State = iota
	Probing
	Transferring
)

// String renders State for logging.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Probing:
		return "probing"
	case Transferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// Session is the per-peer anti-entropy state: an in-flight binary
// search bracket [Min, Max) over canonical-order indices, narrowing
// toward the first index at which the two replicas disagree.
type Session struct {
	State     State
	RequestID types.UUID
	Min       uint32
	Max       uint32
	Target    types.DeviceID
	Deadline  types.RelTime
}
