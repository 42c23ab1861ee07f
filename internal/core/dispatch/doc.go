// Package dispatch implements the Network Dispatcher: the component
// that turns inbound wire frames into outbound frames and delivered
// application payloads, and turns outbound application payloads into
// signed, routed Message frames.
//
// It composes the IARP routing table and advertiser with the IERP
// route cache and discovery engine: a Message addressed beyond this
// device's zone rides the route cache if one is warm, otherwise the
// payload is parked and a route discovery is initiated; a broken
// forwarding hop invalidates both caches and triggers rediscovery.
package dispatch
