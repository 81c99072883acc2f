package metadata

import (
	"encoding/binary"
	"testing"

	"github.com/hupe1980/lightfs/codec"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := map[string]*Entry{
		"notes.txt": {Name: "notes.txt", Size: 1500000, Blocks: []uint32{0, 1}},
		"empty":     NewEntry("empty", false),
		"docs":      NewEntry("docs", true),
	}

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := Encode(c, entries)
			require.NoError(t, err)

			declared := binary.LittleEndian.Uint32(data)
			require.Equal(t, int(declared), len(data)-4)

			decoded, consumed, err := Decode(c, data)
			require.NoError(t, err)
			require.Equal(t, len(data), consumed)
			require.Equal(t, entries, decoded)
		})
	}
}

func TestCodecsAreInterchangeable(t *testing.T) {
	entries := map[string]*Entry{
		"a": {Name: "a", Size: 7, Blocks: []uint32{3}},
	}

	data, err := Encode(codec.GoJSON{}, entries)
	require.NoError(t, err)

	decoded, _, err := Decode(codec.JSON{}, data)
	require.NoError(t, err)
	require.Equal(t, entries, decoded)
}

func TestEncodeEmptyMap(t *testing.T) {
	data, err := Encode(nil, map[string]*Entry{})
	require.NoError(t, err)

	decoded, consumed, err := Decode(nil, data)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Empty(t, decoded)
}

func TestDecodeCorrupt(t *testing.T) {
	t.Run("shorter than prefix", func(t *testing.T) {
		_, _, err := Decode(nil, []byte{1, 2})
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("declared length exceeds buffer", func(t *testing.T) {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint32(buf, 100)
		_, _, err := Decode(nil, buf)
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("payload is not an entry map", func(t *testing.T) {
		payload := []byte(`[1,2,3]`)
		buf := make([]byte, 4+len(payload))
		binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
		copy(buf[4:], payload)
		_, _, err := Decode(nil, buf)
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("null descriptor", func(t *testing.T) {
		payload := []byte(`{"x":null}`)
		buf := make([]byte, 4+len(payload))
		binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
		copy(buf[4:], payload)
		_, _, err := Decode(nil, buf)
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestDecodeNormalizesNilBlocks(t *testing.T) {
	payload := []byte(`{"x":{"name":"x","is_folder":false,"size":0,"blocks":null}}`)
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)

	decoded, _, err := Decode(nil, buf)
	require.NoError(t, err)
	require.NotNil(t, decoded["x"].Blocks)
	require.Empty(t, decoded["x"].Blocks)
}

func TestEntryClone(t *testing.T) {
	e := &Entry{Name: "a", Size: 10, Blocks: []uint32{1, 2}}
	c := e.Clone()
	c.Blocks[0] = 9
	c.Name = "b"
	require.Equal(t, uint32(1), e.Blocks[0])
	require.Equal(t, "a", e.Name)
}
