package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/meetingnexus/backend/pkg/ai"
)

// stubAIClient replays a canned raw model response through the same decode
// path the real adapters use.
type stubAIClient struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return s.response, s.err
}

func (s *stubAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return s.err
	}
	if err := ai.UnmarshalFlexible(s.response, out); err != nil {
		return fmt.Errorf("%w: %s", ai.ErrUnparsable, err)
	}
	return nil
}

func (s *stubAIClient) ResetMetrics()               {}
func (s *stubAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func newTestExtractor(client ai.GraphAIClient, budget int) *Extractor {
	e := NewExtractor(NewExtractorParams{AIClient: client, TokenBudget: budget})
	e.count = func(s string) int { return len(s) }
	return e
}

func TestExtractDecodesResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []Assertion
	}{
		{
			"ObjectForm",
			`{"assertions": [["Alice","works with","Bob"], ["Alice","#4f9dff"]]}`,
			[]Assertion{NewRelation("Alice", "works with", "Bob"), NewRecolor("Alice", "#4f9dff")},
		},
		{
			"BareArray",
			`[["Alice","works with","Bob"]]`,
			[]Assertion{NewRelation("Alice", "works with", "Bob")},
		},
		{
			"CodeFenced",
			"```json\n{\"assertions\": [[\"A\",\"knows\",\"B\"]]}\n```",
			[]Assertion{NewRelation("A", "knows", "B")},
		},
		{
			"ProseWrapped",
			`Sure! Here are the assertions: {"assertions": [["A","knows","B"]]} Hope that helps.`,
			[]Assertion{NewRelation("A", "knows", "B")},
		},
		{
			"MalformedElementsDropped",
			`{"assertions": [["A","knows","B"], "junk", ["only-one"], ["C","no-hash"], ["C","#00ff00"]]}`,
			[]Assertion{NewRelation("A", "knows", "B"), NewRecolor("C", "#00ff00")},
		},
		{
			"EmptyAssertions",
			`{"assertions": []}`,
			[]Assertion{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubAIClient{response: tc.response}
			e := newTestExtractor(client, 100000)

			got, err := e.Extract(context.Background(), []BatchLine{{Speaker: "Speaker_1", Text: "hello"}})
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Extract = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestExtractUnparsableIsEmptyResult(t *testing.T) {
	client := &stubAIClient{response: "I could not find any structured information, sorry."}
	e := newTestExtractor(client, 100000)

	got, err := e.Extract(context.Background(), []BatchLine{{Speaker: "Speaker_1", Text: "hello"}})
	if err != nil {
		t.Fatalf("unparsable output must not fail: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
}

func TestExtractTransportErrorPropagates(t *testing.T) {
	transportErr := errors.New("connection refused")
	client := &stubAIClient{err: transportErr}
	e := newTestExtractor(client, 100000)

	_, err := e.Extract(context.Background(), []BatchLine{{Speaker: "Speaker_1", Text: "hello"}})
	if !errors.Is(err, transportErr) {
		t.Fatalf("err = %v, want wrapped %v", err, transportErr)
	}
}

func TestExtractEmptyBatchSkipsRequest(t *testing.T) {
	client := &stubAIClient{response: `{"assertions": []}`}
	e := newTestExtractor(client, 100000)

	got, err := e.Extract(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("Extract(nil) = %v, %v, want nil, nil", got, err)
	}
	if client.calls != 0 {
		t.Fatalf("empty batch still reached the model")
	}
}

func TestExtractFormatsBatch(t *testing.T) {
	client := &stubAIClient{response: `{"assertions": []}`}
	e := newTestExtractor(client, 100000)

	_, err := e.Extract(context.Background(), []BatchLine{
		{Speaker: "Speaker_1", Text: "we should ship friday"},
		{Speaker: "Speaker_2", Text: "agreed"},
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := "Speaker_1: we should ship friday\nSpeaker_2: agreed\n"
	if client.lastPrompt != want {
		t.Fatalf("prompt = %q, want %q", client.lastPrompt, want)
	}
}

func TestTruncateBatchDropsOldest(t *testing.T) {
	lines := []BatchLine{
		{Speaker: "a", Text: strings.Repeat("x", 50)},
		{Speaker: "b", Text: strings.Repeat("y", 50)},
		{Speaker: "c", Text: "tail"},
	}
	count := func(s string) int { return len(s) }

	got := truncateBatch(lines, 70, count)
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].Speaker != "b" || got[1].Speaker != "c" {
		t.Fatalf("wrong lines kept: %+v", got)
	}

	// Even a single oversized line survives.
	got = truncateBatch(lines, 1, count)
	if len(got) != 1 || got[0].Speaker != "c" {
		t.Fatalf("newest line must always be kept, got %+v", got)
	}
}
