// Package identity implements the Credentials Store: the binding from a
// DeviceID to the public key it signs with, established either by
// trust-on-first-use or by a pre-provisioned authority signature.
package identity
