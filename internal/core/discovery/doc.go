// Package discovery implements the IERP Route Cache (an expiring map of
// resolved multi-zone routes) and the Discovery Engine (flood-and-harvest
// route request/reply across zone boundaries).
package discovery
