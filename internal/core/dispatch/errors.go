package dispatch

import "errors"

var (
	// ErrTargetPublicKeyUnknown is returned by QueueMessageTo when the
	// Credentials Store has no binding for the target device.
	ErrTargetPublicKeyUnknown = errors.New("dispatch: target public key unknown")

	// ErrUnsupportedFrame is returned by ProcessDatagram for a tag it
	// does not handle (e.g. a registry frame, which the registry sync
	// session owns instead).
	ErrUnsupportedFrame = errors.New("dispatch: unsupported frame tag")

	// errTargetUnreachable is logged when Tick drops the parked payloads
	// of a destination whose discovery timed out; it is never returned,
	// since queueing a message is a best-effort async
	// operation that resolves (or times out) later via Tick.
	errTargetUnreachable = errors.New("dispatch: target unreachable")
)
