package ai

import (
	"reflect"
	"testing"
)

type testPayload struct {
	Assertions [][]string `json:"assertions"`
}

func TestUnmarshalFlexible(t *testing.T) {
	want := testPayload{Assertions: [][]string{{"Alice", "works with", "Bob"}}}

	tests := []struct {
		name  string
		input string
	}{
		{"Strict", `{"assertions": [["Alice","works with","Bob"]]}`},
		{"CodeFence", "```json\n{\"assertions\": [[\"Alice\",\"works with\",\"Bob\"]]}\n```"},
		{"FenceWithoutTag", "```\n{\"assertions\": [[\"Alice\",\"works with\",\"Bob\"]]}\n```"},
		{"DoubleEncoded", `"{\"assertions\": [[\"Alice\",\"works with\",\"Bob\"]]}"`},
		{"TrailingComma", `{"assertions": [["Alice","works with","Bob"],]}`},
		{"SingleQuotes", `{'assertions': [['Alice','works with','Bob']]}`},
		{"EmbeddedInProse", `The extracted facts are {"assertions": [["Alice","works with","Bob"]]} as requested.`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got testPayload
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestUnmarshalFlexibleRejectsPlainProse(t *testing.T) {
	var got testPayload
	if err := UnmarshalFlexible("no structured content here, sorry", &got); err == nil {
		t.Fatal("expected error for prose without any JSON value")
	}
}

func TestFirstJSONValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"BareObject", `{"a":1}`, `{"a":1}`},
		{"BareArray", `[1,2,3]`, `[1,2,3]`},
		{"ProsePrefix", `Here you go: {"a":1} done`, `{"a":1}`},
		{"NestedBraces", `x {"a":{"b":[1,2]}} y`, `{"a":{"b":[1,2]}}`},
		{"BracesInsideString", `{"a":"}"}`, `{"a":"}"}`},
		{"EscapedQuoteInString", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"Unbalanced", `{"a":1`, ""},
		{"NoJSON", `plain text`, ""},
		{"Empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstJSONValue(tc.input)
			if got != tc.want {
				t.Fatalf("FirstJSONValue(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"NoFence", `{"a":1}`, `{"a":1}`},
		{"JSONTag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"NoTag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"SurroundingWhitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := stripCodeFence(tc.input)
			if got != tc.want {
				t.Fatalf("stripCodeFence = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateOptions(t *testing.T) {
	opts := GenerateOptions{}
	for _, apply := range []GenerateOption{
		WithModel("gpt-test"),
		WithSystemPrompts("a", "b"),
		WithTemperature(0.3),
		WithThinking("low"),
	} {
		apply(&opts)
	}

	want := GenerateOptions{
		Model:         "gpt-test",
		SystemPrompts: []string{"a", "b"},
		Temperature:   0.3,
		Thinking:      "low",
	}
	if !reflect.DeepEqual(opts, want) {
		t.Fatalf("opts = %+v, want %+v", opts, want)
	}
}
