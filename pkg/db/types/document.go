package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is a structured key-value payload persisted as jsonb. Audit
// entries use it for before/after detail so the stored shape stays
// queryable instead of collapsing into an opaque blob.
type Document map[string]any

// Value implements driver.Valuer.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (d *Document) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported document source %T", src)
	}

	if len(raw) == 0 {
		*d = nil
		return nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	*d = out
	return nil
}

// Merge returns a copy of d with the entries of other layered on top.
func (d Document) Merge(other Document) Document {
	merged := make(Document, len(d)+len(other))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
