// Package registry implements the Replicated Signed Registry Core: an
// append-only, partially-ordered log of cryptographically-signed
// entries that converges across peers via anti-entropy sync, while
// enforcing a pluggable per-entry permission predicate.
//
// Entries form a tree rooted at the empty UUID. The canonical total
// order is a pre-order traversal where siblings — entries sharing the
// same parent UUID, including the empty-UUID "virtual root" — are
// ordered by ascending UUID. Cryptographic and permission failures are
// never corrected: the offending entry stays in the log so that
// convergence is preserved, but its effect on head_state is suppressed.
package registry
