package world

import (
	"errors"
	"fmt"
	"maps"

	json "github.com/goccy/go-json"
)

// ErrInputNotObject is returned when an input value does not encode to a
// JSON object.
var ErrInputNotObject = errors.New("world: input must encode to an object")

// MergeMode decides how a key-value input and a structured data input are
// unified into one input map.
type MergeMode int

const (
	// DataOverridesDict lets structured data win on shared keys.
	DataOverridesDict MergeMode = iota

	// DictOverridesData lets the key-value input win on shared keys.
	DictOverridesData

	// SeparateKeys nests each input under its own key.
	SeparateKeys
)

// String returns the mode name.
func (m MergeMode) String() string {
	switch m {
	case DataOverridesDict:
		return "data-overrides-dict"
	case DictOverridesData:
		return "dict-overrides-data"
	case SeparateKeys:
		return "separate-keys"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

// MergeOptions configures MergeInputs.
type MergeOptions struct {
	Mode MergeMode

	// DataKey and DictKey name the nested maps in SeparateKeys mode.
	// They default to "data" and "dict".
	DataKey string
	DictKey string
}

// ToMap converts v to a plain map by a JSON round trip, so nested structs
// become maps and the result shares no memory with v. nil yields an empty
// map.
func ToMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("world: encode input: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputNotObject, err)
	}
	if out == nil {
		// JSON null
		out = map[string]any{}
	}
	return out, nil
}

// MergeInputs unifies a key-value input and structured data into a single
// input map. Either may be nil.
func MergeInputs(dict map[string]any, data any, opts MergeOptions) (map[string]any, error) {
	d, err := ToMap(dict)
	if err != nil {
		return nil, err
	}
	s, err := ToMap(data)
	if err != nil {
		return nil, err
	}

	switch opts.Mode {
	case DataOverridesDict:
		maps.Copy(d, s)
		return d, nil
	case DictOverridesData:
		maps.Copy(s, d)
		return s, nil
	case SeparateKeys:
		dataKey, dictKey := opts.DataKey, opts.DictKey
		if dataKey == "" {
			dataKey = "data"
		}
		if dictKey == "" {
			dictKey = "dict"
		}
		return map[string]any{dataKey: s, dictKey: d}, nil
	default:
		return nil, fmt.Errorf("world: unknown merge mode %v", opts.Mode)
	}
}
