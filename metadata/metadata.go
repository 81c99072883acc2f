// Package metadata defines the entry descriptors stored in a container's
// metadata region and their wire encoding.
//
// The encoded form is a little-endian uint32 length prefix followed by the
// codec-encoded entry map (a JSON object keyed by entry name). The encoding
// round-trips name, folder flag, size and block list exactly.
package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/lightfs/codec"
	"github.com/hupe1980/lightfs/layout"
)

// ErrCorrupt indicates that stored metadata cannot be decoded.
//
// Returned errors satisfy errors.Is(err, ErrCorrupt); the concrete
// *CorruptError carries the reason and, where present, the decode cause.
var ErrCorrupt = errors.New("corrupt metadata")

// CorruptError describes undecodable metadata.
type CorruptError struct {
	Reason string
	cause  error
}

func (e *CorruptError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("corrupt metadata: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("corrupt metadata: %s", e.Reason)
}

func (e *CorruptError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrCorrupt, e.cause}
	}
	return []error{ErrCorrupt}
}

// Entry describes one named file or folder.
type Entry struct {
	Name     string   `json:"name"`
	IsFolder bool     `json:"is_folder"`
	Size     int64    `json:"size"`
	Blocks   []uint32 `json:"blocks"`
}

// NewEntry returns a zero-size entry with no blocks.
func NewEntry(name string, isFolder bool) *Entry {
	return &Entry{
		Name:     name,
		IsFolder: isFolder,
		Blocks:   []uint32{},
	}
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Blocks = append([]uint32(nil), e.Blocks...)
	return &c
}

// Encode serializes the entry map: a little-endian uint32 byte length
// followed by the codec-encoded map. Map iteration order is irrelevant;
// the payload is an object keyed by entry name.
func Encode(c codec.Codec, entries map[string]*Entry) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	payload, err := c.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entry map: %w", err)
	}
	buf := make([]byte, layout.MetaLenSize+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[layout.MetaLenSize:], payload)
	return buf, nil
}

// Decode is the inverse of Encode. data is the raw metadata region (or a
// prefix of it); Decode returns the entry map and the number of bytes
// consumed, i.e. the offset at which the occupancy bytes begin.
func Decode(c codec.Codec, data []byte) (map[string]*Entry, int, error) {
	if c == nil {
		c = codec.Default
	}
	if len(data) < layout.MetaLenSize {
		return nil, 0, &CorruptError{Reason: "metadata shorter than length prefix"}
	}
	n := binary.LittleEndian.Uint32(data)
	if int64(n) > int64(len(data)-layout.MetaLenSize) {
		return nil, 0, &CorruptError{Reason: fmt.Sprintf("declared length %d exceeds available %d bytes", n, len(data)-layout.MetaLenSize)}
	}
	payload := data[layout.MetaLenSize : layout.MetaLenSize+int(n)]
	entries := make(map[string]*Entry)
	if err := c.Unmarshal(payload, &entries); err != nil {
		return nil, 0, &CorruptError{Reason: "entry map does not decode", cause: err}
	}
	for name, e := range entries {
		if e == nil {
			return nil, 0, &CorruptError{Reason: fmt.Sprintf("entry %q has no descriptor", name)}
		}
		if e.Blocks == nil {
			e.Blocks = []uint32{}
		}
	}
	return entries, layout.MetaLenSize + int(n), nil
}
