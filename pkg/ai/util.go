package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		// drop the language tag line
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// FirstJSONValue returns the first balanced JSON object or array substring in
// s, or "" when none exists. It is the last-resort strategy for model output
// that wraps its JSON in prose.
func FirstJSONValue(s string) string {
	start := -1
	var open, closing byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			closing = '}'
			if open == '[' {
				closing = ']'
			}
			break
		}
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// GenerateSchema creates a JSON Schema from the given Go type.
// It uses reflection to inspect the type structure and generates
// a schema suitable for use with AI structured output.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible attempts to unmarshal JSON into the target with multiple
// fallback strategies: standard unmarshaling, double-encoded JSON strings,
// repair of malformed JSON, and finally extraction and repair of the first
// balanced JSON substring embedded in surrounding prose.
//
// This is useful for parsing AI-generated JSON, which may be malformed,
// fenced, wrapped in strings, or wrapped in commentary.
func UnmarshalFlexible(input string, out any) error {
	input = stripCodeFence(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = stripCodeFence(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	if repaired, err := jsonrepair.JSONRepair(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	if embedded := FirstJSONValue(input); embedded != "" && embedded != input {
		if err := json.Unmarshal([]byte(embedded), out); err == nil {
			return nil
		}
		if repaired, err := jsonrepair.JSONRepair(embedded); err == nil {
			if err := json.Unmarshal([]byte(repaired), out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("unmarshal failed after repair (input: %s)", input)
}
