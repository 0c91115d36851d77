package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON holds a raw JSON document. It is written as text so the same value
// lands in a Postgres jsonb column and a SQLite TEXT column.
type JSON json.RawMessage

// MarshalJSONValue encodes v, falling back to an empty object for nil.
func MarshalJSONValue(v any) (JSON, error) {
	if v == nil {
		return JSON("{}"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSON(b), nil
}

func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = JSON("null")
		return nil
	case string:
		*j = append((*j)[:0], v...)
		return nil
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}
