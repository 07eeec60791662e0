package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Envelope wraps every persisted collection with its schema version.
type Envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Migration upgrades a payload by exactly one version.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// Schema describes the versioned layout of one key.
//
// Migrations is keyed by the source version: Migrations[0] upgrades version 0
// (values written without an envelope) to version 1.
type Schema struct {
	Key        string
	Version    int
	Migrations map[int]Migration
}

// Decode unwraps raw and migrates its payload to the schema version.
func (s Schema) Decode(raw json.RawMessage) (json.RawMessage, error) {
	version, data, err := unwrap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Key, err)
	}
	if version > s.Version {
		return nil, fmt.Errorf("%s: version %d > %d: %w", s.Key, version, s.Version, ErrUnsupportedVersion)
	}

	for v := version; v < s.Version; v++ {
		migrate, ok := s.Migrations[v]
		if !ok {
			return nil, fmt.Errorf("%s: no migration from version %d: %w", s.Key, v, ErrUnsupportedVersion)
		}
		data, err = migrate(data)
		if err != nil {
			return nil, fmt.Errorf("%s: migrate version %d: %w", s.Key, v, err)
		}
	}
	return data, nil
}

// Encode wraps data in an envelope at the schema version.
func (s Schema) Encode(data json.RawMessage) (json.RawMessage, error) {
	out, err := json.Marshal(Envelope{Version: s.Version, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%s: encode envelope: %w", s.Key, err)
	}
	return out, nil
}

// unwrap splits raw into version and payload. Anything that is not an
// envelope object is a version 0 payload.
func unwrap(raw json.RawMessage) (int, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return 0, nil, ErrCorruptRecord
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return 0, trimmed, nil
	}

	var probe struct {
		Version *int            `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil || probe.Version == nil || probe.Data == nil {
		return 0, trimmed, nil
	}
	if *probe.Version < 0 {
		return 0, nil, ErrCorruptRecord
	}
	return *probe.Version, probe.Data, nil
}

// Load reads key, migrates it and decodes the payload into dst.
// found is false when the key is absent; dst is left untouched.
func Load[T any](ctx context.Context, store Store, schema Schema, dst *T) (found bool, err error) {
	raw, ok, err := store.Get(ctx, schema.Key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", schema.Key, err)
	}
	if !ok {
		return false, nil
	}

	data, err := schema.Decode(raw)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%s: decode payload: %v: %w", schema.Key, err, ErrCorruptRecord)
	}
	return true, nil
}

// Save encodes v in an envelope and writes it under the schema key.
func Save[T any](ctx context.Context, store Store, schema Schema, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", schema.Key, err)
	}
	raw, err := schema.Encode(data)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, schema.Key, raw); err != nil {
		return fmt.Errorf("set %s: %w", schema.Key, err)
	}
	return nil
}
