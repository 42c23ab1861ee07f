package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/meshcore/mesh/pkg/types"
)

// RegistryHead is tag 0x10: a periodic head-state announcement used to
// trigger anti-entropy sync.
type RegistryHead struct {
	Name       string
	HeadHash   types.Hash
	EntryCount uint32
	InstanceID types.UUID
}

// Encode serializes h to a tagged frame.
func (h RegistryHead) Encode() []byte {
	body := writeVarString(nil, h.Name)
	body = append(body, h.HeadHash[:]...)
	body = appendUint32(body, h.EntryCount)
	body = append(body, h.InstanceID[:]...)
	return Encode(TagRegistryHead, body)
}

// DecodeRegistryHead parses a RegistryHead body.
func DecodeRegistryHead(body []byte) (RegistryHead, error) {
	var h RegistryHead
	name, rest, err := readVarString(body)
	if err != nil {
		return h, err
	}
	h.Name = name

	hash, rest, err := readFixed(rest, types.HashSize)
	if err != nil {
		return h, err
	}
	copy(h.HeadHash[:], hash)

	count, rest, err := readUint32(rest)
	if err != nil {
		return h, err
	}
	h.EntryCount = count

	inst, rest, err := readFixed(rest, types.UUIDSize)
	if err != nil {
		return h, err
	}
	copy(h.InstanceID[:], inst)
	if len(rest) != 0 {
		return h, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	return h, nil
}

// RegistryHashRequest is tag 0x11: the binary-search probe.
type RegistryHashRequest struct {
	Name      string
	RequestID types.UUID
	Index     uint32
}

// Encode serializes r to a tagged frame.
func (r RegistryHashRequest) Encode() []byte {
	body := writeVarString(nil, r.Name)
	body = append(body, r.RequestID[:]...)
	body = appendUint32(body, r.Index)
	return Encode(TagRegistryHashRequest, body)
}

// DecodeRegistryHashRequest parses a RegistryHashRequest body.
func DecodeRegistryHashRequest(body []byte) (RegistryHashRequest, error) {
	var r RegistryHashRequest
	name, rest, err := readVarString(body)
	if err != nil {
		return r, err
	}
	r.Name = name

	reqID, rest, err := readFixed(rest, types.UUIDSize)
	if err != nil {
		return r, err
	}
	copy(r.RequestID[:], reqID)

	index, rest, err := readUint32(rest)
	if err != nil {
		return r, err
	}
	r.Index = index
	if len(rest) != 0 {
		return r, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	return r, nil
}

// RegistryHashReply is tag 0x12: the probe response.
type RegistryHashReply struct {
	Name      string
	RequestID types.UUID
	Index     uint32
	Hash      types.Hash
}

// Encode serializes r to a tagged frame.
func (r RegistryHashReply) Encode() []byte {
	body := writeVarString(nil, r.Name)
	body = append(body, r.RequestID[:]...)
	body = appendUint32(body, r.Index)
	body = append(body, r.Hash[:]...)
	return Encode(TagRegistryHashReply, body)
}

// DecodeRegistryHashReply parses a RegistryHashReply body.
func DecodeRegistryHashReply(body []byte) (RegistryHashReply, error) {
	var r RegistryHashReply
	name, rest, err := readVarString(body)
	if err != nil {
		return r, err
	}
	r.Name = name

	reqID, rest, err := readFixed(rest, types.UUIDSize)
	if err != nil {
		return r, err
	}
	copy(r.RequestID[:], reqID)

	index, rest, err := readUint32(rest)
	if err != nil {
		return r, err
	}
	r.Index = index

	hash, rest, err := readFixed(rest, types.HashSize)
	if err != nil {
		return r, err
	}
	copy(r.Hash[:], hash)
	if len(rest) != 0 {
		return r, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	return r, nil
}

// RegistryEntries is tag 0x13: a batch transfer of raw, still-signed
// entry bytes (each entry's own encoding is owned by the registry
// package, not by this frame).
type RegistryEntries struct {
	Name          string
	StartingIndex uint32
	Entries       [][]byte
}

// Encode serializes e to a tagged frame.
func (e RegistryEntries) Encode() []byte {
	body := writeVarString(nil, e.Name)
	body = appendUint32(body, e.StartingIndex)
	body = appendUint32(body, uint32(len(e.Entries)))
	for _, entry := range e.Entries {
		body = writeVarBytes(body, entry)
	}
	return Encode(TagRegistryEntries, body)
}

// DecodeRegistryEntries parses a RegistryEntries body.
func DecodeRegistryEntries(body []byte) (RegistryEntries, error) {
	var e RegistryEntries
	name, rest, err := readVarString(body)
	if err != nil {
		return e, err
	}
	e.Name = name

	start, rest, err := readUint32(rest)
	if err != nil {
		return e, err
	}
	e.StartingIndex = start

	count, rest, err := readUint32(rest)
	if err != nil {
		return e, err
	}

	e.Entries = make([][]byte, count)
	for i := 0; i < int(count); i++ {
		var entry []byte
		entry, rest, err = readVarBytes(rest)
		if err != nil {
			return e, err
		}
		e.Entries[i] = append([]byte(nil), entry...)
	}
	if len(rest) != 0 {
		return e, fmt.Errorf("%w: trailing bytes", ErrParsingError)
	}
	return e, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func readUint32(data []byte) (uint32, []byte, error) {
	b, rest, err := readFixed(data, 4)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint32(b), rest, nil
}
