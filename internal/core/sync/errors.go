package sync

import "errors"

var (
	// ErrSyncInProgress is returned by Start when the peer already has
	// a non-Idle, non-expired session.
	ErrSyncInProgress = errors.New("sync: session already in progress with this peer")
)
