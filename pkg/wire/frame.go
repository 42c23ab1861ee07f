package wire

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// Tag identifies a frame's body layout.
type Tag byte

const (
	TagAdvertisement        Tag = 0x01
	TagRouteDiscovery       Tag = 0x02
	TagRouteDiscoveryAck    Tag = 0x03
	TagDeliveryFailure      Tag = 0x04
	TagMessage              Tag = 0x05
	TagRegistryHead         Tag = 0x10
	TagRegistryHashRequest  Tag = 0x11
	TagRegistryHashReply    Tag = 0x12
	TagRegistryEntries      Tag = 0x13
)

// Encode wraps body as a tagged, length-prefixed frame:
// [tag:1][len:varint][body].
func Encode(tag Tag, body []byte) []byte {
	lenPrefix := varint.ToUvarint(uint64(len(body)))
	buf := make([]byte, 0, 1+len(lenPrefix)+len(body))
	buf = append(buf, byte(tag))
	buf = append(buf, lenPrefix...)
	buf = append(buf, body...)
	return buf
}

// Decode splits frame into its tag and body, verifying the length
// prefix matches the remaining bytes exactly (no trailing garbage).
func Decode(frame []byte) (Tag, []byte, error) {
	if len(frame) < 1 {
		return 0, nil, fmt.Errorf("%w: empty frame", ErrParsingError)
	}
	tag := Tag(frame[0])

	r := bytes.NewReader(frame[1:])
	length, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad length prefix: %v", ErrParsingError, err)
	}
	body := make([]byte, r.Len())
	if _, err := r.Read(body); err != nil && len(body) > 0 {
		return 0, nil, fmt.Errorf("%w: short body: %v", ErrParsingError, err)
	}
	if uint64(len(body)) != length {
		return 0, nil, fmt.Errorf("%w: length mismatch: want %d got %d", ErrParsingError, length, len(body))
	}
	return tag, body, nil
}

func readFixed(data []byte, n int) ([]byte, []byte, error) {
	if len(data) < n {
		return nil, nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrParsingError, n, len(data))
	}
	return data[:n], data[n:], nil
}
