package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n[1,2]\n```\n", want: `[1,2]`},
		{name: "no fence", in: "  {\"a\":1}\t", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "raw newline inside string",
			in:   "{\"a\":\"line1\nline2\"}",
			want: `{"a":"line1 line2"}`,
		},
		{
			name: "unescaped inner quotes",
			in:   `{"title":"The "smart" assistant","x":1}`,
			want: `{"title":"The \"smart\" assistant","x":1}`,
		},
		{
			name: "stray backslash",
			in:   `{"path":"C:\data"}`,
			want: `{"path":"C:\\data"}`,
		},
		{
			name: "valid escapes survive",
			in:   `{"a":"x\ny \"q\""}`,
			want: `{"a":"x\ny \"q\""}`,
		},
		{
			name: "escaped apostrophe",
			in:   `{"a":"it\'s"}`,
			want: `{"a":"it's"}`,
		},
		{
			name: "typographic quotes",
			in:   "{“title”: “x”}",
			want: `{"title": "x"}`,
		},
		{
			name: "fenced and well formed",
			in:   "```json\n{\"steps\": [\"a\", \"b\"]}\n```",
			want: `{"steps": ["a", "b"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.in))
		})
	}
}

func TestDecode_FencedJSON(t *testing.T) {
	var out struct {
		Strategies []struct {
			ID string `json:"id"`
		} `json:"strategies"`
	}
	err := Decode("```json\n{\"strategies\":[{\"id\":\"strategy_1\"}]}\n```", &out)
	require.NoError(t, err)
	require.Len(t, out.Strategies, 1)
	assert.Equal(t, "strategy_1", out.Strategies[0].ID)
}

func TestDecode_MalformedIsParseError(t *testing.T) {
	raw := `{"a": }`
	var out map[string]any
	err := Decode(raw, &out)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, raw, parseErr.Raw)

	var shapeErr *ShapeError
	assert.False(t, errors.As(err, &shapeErr))
}

func TestDecode_WrongShapeIsShapeError(t *testing.T) {
	var out struct {
		Items []int `json:"items"`
	}
	err := Decode(`{"items":"nope"}`, &out)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "items", shapeErr.Field)

	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestDecode_Empty(t *testing.T) {
	var out map[string]any
	var parseErr *ParseError
	assert.True(t, errors.As(Decode("```json\n```", &out), &parseErr))
}

func TestDecodeRepaired_ExtractsObjectFromProse(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	err := DecodeRepaired("Here you go: {\"a\":1} hope this helps", &out)
	require.NoError(t, err)
	assert.Equal(t, 1, out.A)
}

func TestDecodeRepaired_Garbage(t *testing.T) {
	raw := "no json here"
	var out map[string]any
	err := DecodeRepaired(raw, &out)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, raw, parseErr.Raw)
}

func TestExtractObject(t *testing.T) {
	span, ok := ExtractObject("prefix {\"a\":{\"b\":1}} suffix")
	assert.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, span)

	_, ok = ExtractObject("[1,2,3]")
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(true, "strategies"))

	var shapeErr *ShapeError
	require.True(t, errors.As(Require(false, "strategies"), &shapeErr))
	assert.Equal(t, "strategies", shapeErr.Field)
}
