// Package sync implements the Registry Core's anti-entropy session: a
// per-peer binary search over each replica's canonical-order hash
// chain that locates the first point of divergence in O(log n) round
// trips, then pushes the missing suffix as a RegistryEntries frame.
//
// Each peer gets its own session (Idle, Probing or Transferring),
// generalizing the single global synchronizationStatus this is
// grounded on: a single-threaded core can track one session per peer
// without any extra locking, so there is no reason to serialize sync
// across peers that both diverge at once. Responding to an inbound
// hash probe is stateless and never touches session state, since a
// probe may arrive from a peer this device has no session with.
package sync
