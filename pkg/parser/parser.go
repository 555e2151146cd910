// Package parser turns raw model output into structured values.
//
// Models wrap JSON in Markdown fences, emit raw control characters inside
// strings and forget to escape quotes. Clean handles the fences; Repair
// additionally rewrites the text so that encoding/json can read it. Decode
// failures are reported as *ParseError when the text is not JSON at all and
// as *ShapeError when it is JSON of the wrong shape.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports text that could not be read as JSON.
type ParseError struct {
	Message string
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports well-formed JSON that lacks a required field or has a
// field of the wrong type.
type ShapeError struct {
	Field string
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unexpected response shape: missing %q", e.Field)
	}
	return fmt.Sprintf("unexpected response shape at %q: %v", e.Field, e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }

var (
	controlRun   = regexp.MustCompile(`[\x00-\x1f]+`)
	controlWide  = regexp.MustCompile(`[\x00-\x1f\x7f-\x{9f}]`)
	objectSpan   = regexp.MustCompile(`(?s)\{.*\}`)
	curlyDouble  = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‟", `"`)
	curlySingle  = strings.NewReplacer("‘", "'", "’", "'")
	validEscapes = `"\/bfnrtu`
)

// Clean strips Markdown code fences and surrounding whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// Repair cleans text and rewrites the usual model mistakes: raw control
// characters become spaces, stray backslashes are escaped and quotes inside
// string values are escaped. When the result is still not valid JSON a
// harsher pass normalizes typographic quotes and drops every control
// character before escaping quotes again.
func Repair(text string) string {
	text = Clean(text)
	text = strings.ReplaceAll(text, `\'`, "'")
	text = controlRun.ReplaceAllString(text, " ")
	text = escapeStrayBackslashes(text)

	repaired := escapeInnerQuotes(text)
	if json.Valid([]byte(repaired)) {
		return repaired
	}
	return aggressive(text)
}

func aggressive(text string) string {
	text = curlySingle.Replace(text)
	text = curlyDouble.Replace(text)
	text = controlWide.ReplaceAllString(text, "")
	return escapeInnerQuotes(text)
}

// escapeStrayBackslashes doubles every backslash that does not start a
// valid JSON escape sequence.
func escapeStrayBackslashes(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(text) && strings.IndexByte(validEscapes, text[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// escapeInnerQuotes walks the text once, tracking whether it is inside a
// string. A quote met inside a string closes it only when the next
// non-space character can legally follow a string value; otherwise it is
// escaped.
func escapeInnerQuotes(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && inString && i+1 < len(text):
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
		case c == '"' && !inString:
			inString = true
			b.WriteByte(c)
		case c == '"' && closesString(text[i+1:]):
			inString = false
			b.WriteByte(c)
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func closesString(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ',', '}', ']', ':':
		return true
	}
	return false
}

// ExtractObject returns the span from the first '{' to the last '}'.
func ExtractObject(text string) (string, bool) {
	match := objectSpan.FindString(text)
	return match, match != ""
}

// Decode cleans text and unmarshals it into dst.
func Decode(text string, dst any) error {
	return unmarshal(Clean(text), text, dst)
}

// DecodeRepaired repairs text and unmarshals it into dst. If the repaired
// text still fails to parse, the outermost {...} span is tried before
// giving up.
func DecodeRepaired(text string, dst any) error {
	repaired := Repair(text)
	err := unmarshal(repaired, text, dst)
	if err == nil {
		return nil
	}
	var shape *ShapeError
	if errors.As(err, &shape) {
		return err
	}
	span, ok := ExtractObject(repaired)
	if !ok || span == repaired {
		return &ParseError{Message: "failed to extract JSON structure from response", Raw: text, Err: err}
	}
	if spanErr := unmarshal(span, text, dst); spanErr != nil {
		if errors.As(spanErr, &shape) {
			return spanErr
		}
		return &ParseError{Message: "failed to parse response despite repair", Raw: text, Err: err}
	}
	return nil
}

func unmarshal(cleaned, raw string, dst any) error {
	if cleaned == "" {
		return &ParseError{Message: "empty response", Raw: raw}
	}
	err := json.Unmarshal([]byte(cleaned), dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ShapeError{Field: typeErr.Field, Err: err}
	}
	return &ParseError{Message: "invalid JSON", Raw: raw, Err: err}
}

// Require returns a *ShapeError naming field when present is false.
func Require(present bool, field string) error {
	if present {
		return nil
	}
	return &ShapeError{Field: field}
}
