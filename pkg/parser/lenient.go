package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number accepts a JSON number or a numeric string. Anything else decodes
// to an invalid Number without failing the surrounding document.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number{Value: v, Valid: true}
		}
		return nil
	}
	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*n = Number{Value: v, Valid: true}
	}
	return nil
}

// Or returns the value, or def when the number was absent or unreadable.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Truthy reports a present, non-zero value.
func (n Number) Truthy() bool { return n.Valid && n.Value != 0 }

// Strings accepts an array and keeps its non-blank string elements. A lone
// string becomes a one-element list; any other value decodes to nil.
type Strings []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Strings) UnmarshalJSON(data []byte) error {
	*s = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var one string
		if err := json.Unmarshal(data, &one); err == nil && strings.TrimSpace(one) != "" {
			*s = Strings{one}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		out := make(Strings, 0, len(items))
		for _, item := range items {
			var str string
			if err := json.Unmarshal(item, &str); err != nil {
				continue
			}
			if strings.TrimSpace(str) != "" {
				out = append(out, str)
			}
		}
		*s = out
	}
	return nil
}

// Text accepts any JSON scalar and keeps it as a string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return nil
	}
	*t = Text(data)
	return nil
}

// Or returns t, or def when t is blank.
func (t Text) Or(def string) string {
	if strings.TrimSpace(string(t)) == "" {
		return def
	}
	return string(t)
}
