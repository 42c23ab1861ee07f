// Package routing implements the IARP Routing Table (a proactive,
// zone-local multimap of reachable peers) and the Advertisement Engine
// that populates it via periodic neighbor broadcasts.
package routing
