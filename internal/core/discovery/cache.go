package discovery

import "github.com/meshcore/mesh/pkg/types"

// cachedRoute is a Route plus the RelTime it expires.
type cachedRoute struct {
	route     []types.DeviceID
	expiresAt types.RelTime
}

// RouteCache is the IERP Route Cache: an expiring map from destination
// to the best known route.
type RouteCache struct {
	routes map[types.DeviceID]cachedRoute
}

// NewRouteCache builds an empty route cache.
func NewRouteCache() *RouteCache {
	return &RouteCache{routes: make(map[types.DeviceID]cachedRoute)}
}

// Lookup returns the cached route to dest, if present and unexpired.
func (c *RouteCache) Lookup(dest types.DeviceID, now types.RelTime) ([]types.DeviceID, bool) {
	r, ok := c.routes[dest]
	if !ok || r.expiresAt <= now {
		return nil, false
	}
	return r.route, true
}

// Store overwrites any existing route for route's final destination.
func (c *RouteCache) Store(route []types.DeviceID, now, ttl types.RelTime) {
	if len(route) == 0 {
		return
	}
	dest := route[len(route)-1]
	c.routes[dest] = cachedRoute{
		route:     append([]types.DeviceID(nil), route...),
		expiresAt: now + ttl,
	}
}

// Invalidate drops the cached route for dest.
func (c *RouteCache) Invalidate(dest types.DeviceID) {
	delete(c.routes, dest)
}

// InvalidateVia drops every cached route that passes through hop.
func (c *RouteCache) InvalidateVia(hop types.DeviceID) {
	for dest, r := range c.routes {
		for _, h := range r.route {
			if h == hop {
				delete(c.routes, dest)
				break
			}
		}
	}
}
