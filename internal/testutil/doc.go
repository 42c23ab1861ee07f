// Package testutil provides hand-written in-memory implementations of
// the four capability interfaces, used to drive scenario tests without
// real sockets, files or wall-clock time.
package testutil
