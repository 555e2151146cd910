package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{in: `{"n": 12.5}`, want: 12.5, valid: true},
		{in: `{"n": "42"}`, want: 42, valid: true},
		{in: `{"n": "85%"}`, want: 85, valid: true},
		{in: `{"n": "high"}`, valid: false},
		{in: `{"n": null}`, valid: false},
		{in: `{"n": [1]}`, valid: false},
		{in: `{}`, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct {
				N Number `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.in), &out))
			assert.Equal(t, tt.valid, out.N.Valid)
			assert.Equal(t, tt.want, out.N.Value)
		})
	}

	assert.Equal(t, 20.0, Number{}.Or(20))
	assert.Equal(t, 0.0, Number{Valid: true}.Or(20))
	assert.False(t, Number{Valid: true}.Truthy())
}

func TestStrings(t *testing.T) {
	tests := []struct {
		in   string
		want Strings
	}{
		{in: `{"s": ["a", 3, "", "  ", "b"]}`, want: Strings{"a", "b"}},
		{in: `{"s": "solo"}`, want: Strings{"solo"}},
		{in: `{"s": {"k": "v"}}`, want: nil},
		{in: `{"s": null}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct {
				S Strings `json:"s"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.in), &out))
			assert.Equal(t, tt.want, out.S)
		})
	}
}

func TestText(t *testing.T) {
	var out struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":5,"c":{"k":1}}`), &out))
	assert.Equal(t, Text("x"), out.A)
	assert.Equal(t, Text("5"), out.B)
	assert.Equal(t, "fallback", out.C.Or("fallback"))
}
