package identity

import "errors"

var (
	// ErrIdentityConflict is returned by Insert when device_id is
	// already bound to a different public key. The existing binding
	// is preserved.
	ErrIdentityConflict = errors.New("identity: conflicting binding for device")

	// ErrAttestationInvalid is returned when an attestation signature
	// does not verify under the key it claims to vouch for.
	ErrAttestationInvalid = errors.New("identity: invalid attestation")

	// ErrAuthorityRequired names the authority-only rejection of a
	// self-signed attestation. Insert reports that case as
	// ErrAttestationInvalid, since the attestation does not verify under
	// the authority key; no function in this package returns it.
	ErrAuthorityRequired = errors.New("identity: authority signature required")
)
