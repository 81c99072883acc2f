package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// The metadata region of a container is a JSON object keyed by entry name,
// so any JSON codec produces interchangeable bytes. JSON is the most
// portable option; GoJSON produces identical output faster.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
var Default Codec = GoJSON{}
