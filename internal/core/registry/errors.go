package registry

import "errors"

var (
	// ErrAlreadyPresent is returned by AddEntry when an entry with the
	// same UUID is already in the log.
	ErrAlreadyPresent = errors.New("registry: entry already present")

	// ErrOrphan is returned by AddEntry when the entry's parent UUID is
	// neither Empty nor present in the log. AddEntries integrates
	// orphans that resolve transitively within a batch and silently
	// discards the rest; a direct AddEntry call surfaces this instead.
	ErrOrphan = errors.New("registry: entry's parent is not present")

	// ErrSignatureVerificationFailed is returned by Set/Del when the
	// entry they just created fails its own signature check (the
	// entry is still retained in the log).
	ErrSignatureVerificationFailed = errors.New("registry: signature verification failed")

	// ErrPermissionDenied is returned by Set/Del when the permission
	// predicate rejects the entry they just created (the entry is
	// still retained in the log).
	ErrPermissionDenied = errors.New("registry: permission denied")

	// ErrParsingError is returned by AddSerializedEntry when the bytes
	// do not decode to a well-formed entry.
	ErrParsingError = errors.New("registry: parsing error")
)
