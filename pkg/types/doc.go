// Package types defines the value types shared across the mesh core:
// device identifiers, entry UUIDs, relative timestamps and content
// hashes. None of these types carry behavior beyond comparison,
// formatting and construction — the components in internal/core own the
// logic that operates on them.
package types
