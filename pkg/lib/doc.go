// Package lib contains infrastructure utility libraries independent of
// any single core component:
//
//   - crypto: signing primitives (Ed25519 keys, signatures)
//   - log: slog wrapper used by every package's component logger
//
// # Relationship to the rest of pkg/
//
// pkg/ holds three kinds of content:
//
//   - interfaces/: capability interfaces consumed by the core
//   - types/: shared value types
//   - wire/: tagged frame codec
//   - lib/: infrastructure utility libraries (this directory)
package lib
