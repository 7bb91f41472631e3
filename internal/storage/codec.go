package storage

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rngsim/internal/game/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeJSON serializes snap in the canonical JSON layout.
func EncodeJSON(snap state.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a JSON snapshot.
//
// Postcondition: undecodable input yields an error wrapping ErrMalformed.
func DecodeJSON(data []byte) (state.Snapshot, error) {
	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return state.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return snap, nil
}

// EncodeYAML serializes snap as YAML using the same field names as JSON.
func EncodeYAML(snap state.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeYAML parses a YAML snapshot.
//
// Postcondition: undecodable input yields an error wrapping ErrMalformed.
func DecodeYAML(data []byte) (state.Snapshot, error) {
	var snap state.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return state.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return snap, nil
}
