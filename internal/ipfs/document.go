package ipfs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalDocument encodes v as compact JSON. Struct field order is
// preserved, so equal values always produce equal bytes.
func MarshalDocument(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes a single JSON document into v.
func UnmarshalDocument(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty document")
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid json document")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
