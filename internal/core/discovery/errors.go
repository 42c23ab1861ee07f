package discovery

import "errors"

// ErrTargetUnreachable names the case of a route discovery whose
// deadline passes with no acknowledgement. No function returns it:
// Engine.Tick reports such discoveries by returning their destinations.
var ErrTargetUnreachable = errors.New("discovery: target unreachable")
