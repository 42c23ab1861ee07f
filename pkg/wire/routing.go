package wire

import (
	"fmt"

	"github.com/meshcore/mesh/pkg/types"
)

const sigSize = 64

// Advertisement is tag 0x01: a neighbor announcement rebroadcast through
// a zone, accumulating the hop path it has traveled.
type Advertisement struct {
	Origin types.DeviceID
	Hops   []types.DeviceID
	TTL    uint8
	Sig    []byte
}

// Encode serializes a to a tagged frame.
func (a Advertisement) Encode() []byte {
	body := make([]byte, 0, types.DeviceIDSize+1+1+sigSize+len(a.Hops)*types.DeviceIDSize)
	body = append(body, a.Origin[:]...)
	body = append(body, byte(len(a.Hops)))
	for _, h := range a.Hops {
		body = append(body, h[:]...)
	}
	body = append(body, a.TTL)
	body = append(body, a.Sig...)
	return Encode(TagAdvertisement, body)
}

// DecodeAdvertisement parses an Advertisement body (post-Decode).
func DecodeAdvertisement(body []byte) (Advertisement, error) {
	var a Advertisement
	origin, rest, err := readFixed(body, types.DeviceIDSize)
	if err != nil {
		return a, err
	}
	copy(a.Origin[:], origin)

	if len(rest) < 1 {
		return a, fmt.Errorf("%w: missing hop count", ErrParsingError)
	}
	hopCount := int(rest[0])
	rest = rest[1:]

	a.Hops = make([]types.DeviceID, hopCount)
	for i := 0; i < hopCount; i++ {
		var hop []byte
		hop, rest, err = readFixed(rest, types.DeviceIDSize)
		if err != nil {
			return a, err
		}
		copy(a.Hops[i][:], hop)
	}

	if len(rest) < 1 {
		return a, fmt.Errorf("%w: missing ttl", ErrParsingError)
	}
	a.TTL = rest[0]
	rest = rest[1:]

	sig, rest, err := readFixed(rest, sigSize)
	if err != nil {
		return a, err
	}
	if len(rest) != 0 {
		return a, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	a.Sig = append([]byte(nil), sig...)
	return a, nil
}

// RouteDiscovery is tag 0x02: a flood query for a route to destination.
type RouteDiscovery struct {
	RequestID   types.UUID
	Origin      types.DeviceID
	Destination types.DeviceID
	RouteSoFar  []types.DeviceID
	TTL         uint8
	Sig         []byte
}

// Encode serializes d to a tagged frame.
func (d RouteDiscovery) Encode() []byte {
	body := make([]byte, 0, types.UUIDSize+2*types.DeviceIDSize+1+1+sigSize+len(d.RouteSoFar)*types.DeviceIDSize)
	body = append(body, d.RequestID[:]...)
	body = append(body, d.Origin[:]...)
	body = append(body, d.Destination[:]...)
	body = append(body, byte(len(d.RouteSoFar)))
	for _, h := range d.RouteSoFar {
		body = append(body, h[:]...)
	}
	body = append(body, d.TTL)
	body = append(body, d.Sig...)
	return Encode(TagRouteDiscovery, body)
}

// DecodeRouteDiscovery parses a RouteDiscovery body.
func DecodeRouteDiscovery(body []byte) (RouteDiscovery, error) {
	var d RouteDiscovery
	reqID, rest, err := readFixed(body, types.UUIDSize)
	if err != nil {
		return d, err
	}
	copy(d.RequestID[:], reqID)

	origin, rest2, err := readFixed(rest, types.DeviceIDSize)
	if err != nil {
		return d, err
	}
	copy(d.Origin[:], origin)
	rest = rest2

	dest, rest3, err := readFixed(rest, types.DeviceIDSize)
	if err != nil {
		return d, err
	}
	copy(d.Destination[:], dest)
	rest = rest3

	if len(rest) < 1 {
		return d, fmt.Errorf("%w: missing route count", ErrParsingError)
	}
	routeCount := int(rest[0])
	rest = rest[1:]

	d.RouteSoFar = make([]types.DeviceID, routeCount)
	for i := 0; i < routeCount; i++ {
		var hop []byte
		hop, rest, err = readFixed(rest, types.DeviceIDSize)
		if err != nil {
			return d, err
		}
		copy(d.RouteSoFar[i][:], hop)
	}

	if len(rest) < 1 {
		return d, fmt.Errorf("%w: missing ttl", ErrParsingError)
	}
	d.TTL = rest[0]
	rest = rest[1:]

	sig, rest, err := readFixed(rest, sigSize)
	if err != nil {
		return d, err
	}
	if len(rest) != 0 {
		return d, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	d.Sig = append([]byte(nil), sig...)
	return d, nil
}

// RouteDiscoveryAck is tag 0x03: the reply that carries a full route
// back to the discovery's originator.
type RouteDiscoveryAck struct {
	RequestID types.UUID
	Route     []types.DeviceID
	Sig       []byte
}

// Encode serializes a to a tagged frame.
func (a RouteDiscoveryAck) Encode() []byte {
	body := make([]byte, 0, types.UUIDSize+1+sigSize+len(a.Route)*types.DeviceIDSize)
	body = append(body, a.RequestID[:]...)
	body = append(body, byte(len(a.Route)))
	for _, h := range a.Route {
		body = append(body, h[:]...)
	}
	body = append(body, a.Sig...)
	return Encode(TagRouteDiscoveryAck, body)
}

// DecodeRouteDiscoveryAck parses a RouteDiscoveryAck body.
func DecodeRouteDiscoveryAck(body []byte) (RouteDiscoveryAck, error) {
	var a RouteDiscoveryAck
	reqID, rest, err := readFixed(body, types.UUIDSize)
	if err != nil {
		return a, err
	}
	copy(a.RequestID[:], reqID)

	if len(rest) < 1 {
		return a, fmt.Errorf("%w: missing route count", ErrParsingError)
	}
	routeCount := int(rest[0])
	rest = rest[1:]
	if routeCount == 0 {
		return a, fmt.Errorf("%w: empty route", ErrParsingError)
	}

	a.Route = make([]types.DeviceID, routeCount)
	for i := 0; i < routeCount; i++ {
		var hop []byte
		hop, rest, err = readFixed(rest, types.DeviceIDSize)
		if err != nil {
			return a, err
		}
		copy(a.Route[i][:], hop)
	}

	sig, rest, err := readFixed(rest, sigSize)
	if err != nil {
		return a, err
	}
	if len(rest) != 0 {
		return a, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	a.Sig = append([]byte(nil), sig...)
	return a, nil
}

// DeliveryFailure is tag 0x04: notice that a forwarding hop is broken.
type DeliveryFailure struct {
	Destination types.DeviceID
	BrokenHop   types.DeviceID
	Sig         []byte
}

// Encode serializes f to a tagged frame.
func (f DeliveryFailure) Encode() []byte {
	body := make([]byte, 0, 2*types.DeviceIDSize+sigSize)
	body = append(body, f.Destination[:]...)
	body = append(body, f.BrokenHop[:]...)
	body = append(body, f.Sig...)
	return Encode(TagDeliveryFailure, body)
}

// DecodeDeliveryFailure parses a DeliveryFailure body.
func DecodeDeliveryFailure(body []byte) (DeliveryFailure, error) {
	var f DeliveryFailure
	dest, rest, err := readFixed(body, types.DeviceIDSize)
	if err != nil {
		return f, err
	}
	copy(f.Destination[:], dest)

	hop, rest, err := readFixed(rest, types.DeviceIDSize)
	if err != nil {
		return f, err
	}
	copy(f.BrokenHop[:], hop)

	sig, rest, err := readFixed(rest, sigSize)
	if err != nil {
		return f, err
	}
	if len(rest) != 0 {
		return f, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	f.Sig = append([]byte(nil), sig...)
	return f, nil
}

// Message is tag 0x05: an authenticated application payload.
type Message struct {
	Source      types.DeviceID
	Destination types.DeviceID
	Payload     []byte
	Sig         []byte
}

// Encode serializes m to a tagged frame.
func (m Message) Encode() []byte {
	body := make([]byte, 0, 2*types.DeviceIDSize+len(m.Payload)+4+sigSize)
	body = append(body, m.Source[:]...)
	body = append(body, m.Destination[:]...)
	body = writeVarBytes(body, m.Payload)
	body = append(body, m.Sig...)
	return Encode(TagMessage, body)
}

// DecodeMessage parses a Message body.
func DecodeMessage(body []byte) (Message, error) {
	var m Message
	src, rest, err := readFixed(body, types.DeviceIDSize)
	if err != nil {
		return m, err
	}
	copy(m.Source[:], src)

	dest, rest, err := readFixed(rest, types.DeviceIDSize)
	if err != nil {
		return m, err
	}
	copy(m.Destination[:], dest)

	payload, rest, err := readVarBytes(rest)
	if err != nil {
		return m, err
	}
	m.Payload = append([]byte(nil), payload...)

	sig, rest, err := readFixed(rest, sigSize)
	if err != nil {
		return m, err
	}
	if len(rest) != 0 {
		return m, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	m.Sig = append([]byte(nil), sig...)
	return m, nil
}

// SignedBytes returns the byte sequence signature checks are computed
// over. Only Origin is covered: Hops accumulates and TTL decrements as
// the advertisement is rebroadcast through the zone, so the origin's
// original signature must remain valid under mutation of those fields.
func (a Advertisement) SignedBytes() []byte {
	return append([]byte(nil), a.Origin[:]...)
}

// SignedBytes returns the byte sequence signature checks are computed over.
func (d RouteDiscovery) SignedBytes() []byte {
	body := make([]byte, 0, types.UUIDSize+2*types.DeviceIDSize+1+len(d.RouteSoFar)*types.DeviceIDSize+1)
	body = append(body, d.RequestID[:]...)
	body = append(body, d.Origin[:]...)
	body = append(body, d.Destination[:]...)
	body = append(body, byte(len(d.RouteSoFar)))
	for _, h := range d.RouteSoFar {
		body = append(body, h[:]...)
	}
	body = append(body, d.TTL)
	return body
}

// SignedBytes returns the byte sequence signature checks are computed over.
func (a RouteDiscoveryAck) SignedBytes() []byte {
	body := make([]byte, 0, types.UUIDSize+1+len(a.Route)*types.DeviceIDSize)
	body = append(body, a.RequestID[:]...)
	body = append(body, byte(len(a.Route)))
	for _, h := range a.Route {
		body = append(body, h[:]...)
	}
	return body
}

// SignedBytes returns the byte sequence signature checks are computed over.
func (f DeliveryFailure) SignedBytes() []byte {
	body := make([]byte, 0, 2*types.DeviceIDSize)
	body = append(body, f.Destination[:]...)
	body = append(body, f.BrokenHop[:]...)
	return body
}

// SignedBytes returns the byte sequence signature checks are computed over.
func (m Message) SignedBytes() []byte {
	body := make([]byte, 0, 2*types.DeviceIDSize+len(m.Payload))
	body = append(body, m.Source[:]...)
	body = append(body, m.Destination[:]...)
	body = writeVarBytes(body, m.Payload)
	return body
}
