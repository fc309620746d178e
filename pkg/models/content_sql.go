package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value implements driver.Valuer so a Content tree can be written straight
// into a jsonb column by database/sql.
func (c Content) Value() (driver.Value, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]any(c))
}

// Scan implements sql.Scanner so a jsonb column reads back into a Content
// tree.
func (c *Content) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Content", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*c = nil
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("models: unmarshal content: %w", err)
	}
	*c = m
	return nil
}
