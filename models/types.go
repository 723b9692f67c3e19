// File: /models/types.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice stores a list of strings as a JSON column.
type StringSlice []string

// Value implements driver.Valuer interface for database storage
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}

	if len(raw) == 0 {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(s))
}

// GormDataType returns the data type for GORM
func (StringSlice) GormDataType() string {
	return "json"
}

// MarshalJSON never emits null so clients can always iterate photo lists.
func (s StringSlice) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}
