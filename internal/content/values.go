package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Record is one row as returned to clients: column name -> value.
type Record map[string]any

func (r Record) ID() int {
	switch id := r["id"].(type) {
	case int:
		return id
	case int32:
		return int(id)
	case int64:
		return int(id)
	default:
		return 0
	}
}

func (r Record) String(column string) string {
	s, _ := r[column].(string)
	return s
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// ParseValues converts raw input (decoded JSON or form values) into typed column values.
// Unknown keys are dropped. With partial set, absent fields are left out instead of
// failing the required check, which is how updates work.
func (s Schema) ParseValues(raw map[string]any, partial bool) (map[string]any, error) {
	values := make(map[string]any, len(raw))
	for _, column := range s.Columns() {
		field, _ := s.Field(column)

		rawValue, present := raw[column]
		if !present {
			if field.Required && !partial {
				return nil, &ValidationError{Field: column, Reason: "is required"}
			}
			continue
		}

		value, err := parseValue(field, rawValue)
		if err != nil {
			return nil, err
		}
		if value == nil && field.Required {
			return nil, &ValidationError{Field: column, Reason: "is required"}
		}
		values[column] = value
	}
	return values, nil
}

// parseValue returns nil for empty input, which clears optional columns.
func parseValue(field Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	str, isString := raw.(string)
	if isString {
		str = strings.TrimSpace(str)
		if str == "" {
			return nil, nil
		}
	}

	switch field.Kind {
	case KindInt:
		return parseInt(field.Name, raw, str, isString)
	case KindDate:
		if !isString {
			return nil, &ValidationError{Field: field.Name, Reason: "must be a date (YYYY-MM-DD)"}
		}
		d, err := time.Parse(DateLayout, str)
		if err != nil {
			return nil, &ValidationError{Field: field.Name, Reason: "must be a date (YYYY-MM-DD)"}
		}
		return d, nil
	case KindTimestamp:
		if !isString {
			return nil, &ValidationError{Field: field.Name, Reason: "must be a timestamp (RFC 3339)"}
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, str); err == nil {
				return ts, nil
			}
		}
		return nil, &ValidationError{Field: field.Name, Reason: "must be a timestamp (RFC 3339)"}
	default:
		if isString {
			return str, nil
		}
		switch v := raw.(type) {
		case json.Number:
			return v.String(), nil
		case bool, float64:
			return fmt.Sprint(v), nil
		default:
			return nil, &ValidationError{Field: field.Name, Reason: "must be a string"}
		}
	}
}

func parseInt(name string, raw any, str string, isString bool) (any, error) {
	invalid := &ValidationError{Field: name, Reason: "must be an integer"}
	if isString {
		n, err := strconv.ParseInt(str, 10, 32)
		if err != nil {
			return nil, invalid
		}
		return n, nil
	}

	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 32)
		if err != nil {
			return nil, invalid
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, invalid
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return nil, invalid
	}
}
