package wire

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// writeVarBytes appends a varint length prefix followed by b.
func writeVarBytes(buf []byte, b []byte) []byte {
	buf = append(buf, varint.ToUvarint(uint64(len(b)))...)
	return append(buf, b...)
}

// readVarBytes reads a varint-length-prefixed byte string, returning the
// string and the remainder of data.
func readVarBytes(data []byte) ([]byte, []byte, error) {
	r := bytes.NewReader(data)
	length, err := varint.ReadUvarint(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParsingError, err)
	}
	rest := data[len(data)-r.Len():]
	if uint64(len(rest)) < length {
		return nil, nil, fmt.Errorf("%w: truncated var bytes", ErrParsingError)
	}
	return rest[:length], rest[length:], nil
}

// writeVarString appends a varint length prefix followed by the UTF-8
// bytes of s.
func writeVarString(buf []byte, s string) []byte {
	return writeVarBytes(buf, []byte(s))
}

// readVarString reads a varint-length-prefixed string.
func readVarString(data []byte) (string, []byte, error) {
	b, rest, err := readVarBytes(data)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}
