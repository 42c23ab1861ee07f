// Package wire encodes and decodes the tagged, length-prefixed frames
// exchanged between mesh devices: advertisements, route discovery
// messages, application messages, and registry sync frames. Every frame
// is [tag: 1 byte][body length: varint][body bytes]; the tag selects the
// body layout from the table below.
//
//	0x01  Advertisement
//	0x02  RouteDiscovery
//	0x03  RouteDiscoveryAck
//	0x04  DeliveryFailure
//	0x05  Message
//	0x10  RegistryHead
//	0x11  RegistryHashRequest
//	0x12  RegistryHashReply
//	0x13  RegistryEntries
package wire
