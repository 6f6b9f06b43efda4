package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/meetingnexus/backend/pkg/graph"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    InboundMessage
		wantErr bool
	}{
		{
			// Exact shape the transcription service emits: ISO-8601
			// timestamp string.
			"TranscriptFromTranscriptionService",
			`{"type":"transcript","speaker":"Speaker_1","timestamp":"2026-08-31T12:00:00.123456","text":"hello","confidence":0.95,"is_final":true}`,
			InboundMessage{
				Type:       TypeTranscript,
				Speaker:    "Speaker_1",
				Text:       "hello",
				IsFinal:    true,
				Confidence: ptr(0.95),
				Timestamp:  "2026-08-31T12:00:00.123456",
			},
			false,
		},
		{
			"TranscriptNumericTimestamp",
			`{"type":"transcript","speaker":"Speaker_1","text":"hello","is_final":true,"timestamp":1712000000.5}`,
			InboundMessage{
				Type:      TypeTranscript,
				Speaker:   "Speaker_1",
				Text:      "hello",
				IsFinal:   true,
				Timestamp: "1712000000.5",
			},
			false,
		},
		{
			"TranscriptWithoutConfidence",
			`{"type":"transcript","speaker":"Speaker_1","text":"hi","is_final":false,"timestamp":"2026-08-31T12:00:01"}`,
			InboundMessage{Type: TypeTranscript, Speaker: "Speaker_1", Text: "hi", Timestamp: "2026-08-31T12:00:01"},
			false,
		},
		{
			"BadTimestampShape",
			`{"type":"transcript","speaker":"Speaker_1","text":"hi","timestamp":{"sec":1}}`,
			InboundMessage{},
			true,
		},
		{"StartMeeting", `{"type":"start_meeting"}`, InboundMessage{Type: TypeStartMeeting}, false},
		{"StopMeeting", `{"type":"stop_meeting"}`, InboundMessage{Type: TypeStopMeeting}, false},
		{"ClearGraph", `{"type":"clear_graph"}`, InboundMessage{Type: TypeClearGraph}, false},
		{"MissingType", `{"speaker":"x"}`, InboundMessage{}, true},
		{"UnknownType", `{"type":"selfdestruct"}`, InboundMessage{}, true},
		{"TranscriptWithoutSpeaker", `{"type":"transcript","text":"hi"}`, InboundMessage{}, true},
		{"NotJSON", `hello`, InboundMessage{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.input))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Decode err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if got.Type != tc.want.Type || got.Speaker != tc.want.Speaker || got.Text != tc.want.Text ||
				got.IsFinal != tc.want.IsFinal || got.Timestamp != tc.want.Timestamp {
				t.Fatalf("Decode = %+v, want %+v", got, tc.want)
			}
			if (got.Confidence == nil) != (tc.want.Confidence == nil) {
				t.Fatalf("confidence presence mismatch: %+v vs %+v", got.Confidence, tc.want.Confidence)
			}
			if got.Confidence != nil && *got.Confidence != *tc.want.Confidence {
				t.Fatalf("confidence = %v, want %v", *got.Confidence, *tc.want.Confidence)
			}
		})
	}
}

func TestMeetingStateEncoding(t *testing.T) {
	store := graph.NewStore()
	store.Merge([]graph.Assertion{graph.NewRelation("Alice", "works with", "Bob")})

	data, err := Encode(NewMeetingState(true, store.Snapshot(), []string{"Speaker_1"}))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["type"] != TypeMeetingState {
		t.Errorf("type = %v, want %q", decoded["type"], TypeMeetingState)
	}
	if decoded["isActive"] != true {
		t.Errorf("isActive = %v, want true", decoded["isActive"])
	}
	graphVal, ok := decoded["graph"].(map[string]any)
	if !ok {
		t.Fatalf("graph missing or wrong shape: %v", decoded["graph"])
	}
	for _, key := range []string{"nodes", "edges"} {
		if _, ok := graphVal[key]; !ok {
			t.Errorf("graph.%s missing", key)
		}
	}
}

func TestGraphUpdateEncodesAssertionArrays(t *testing.T) {
	update := NewGraphUpdate([]graph.Assertion{
		graph.NewRelation("Alice", "works with", "Bob"),
		graph.NewRecolor("Alice", "#4f9dff"),
	})

	data, err := Encode(update)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `"data":[["Alice","works with","Bob"],["Alice","#4f9dff"]]`
	if !strings.Contains(string(data), want) {
		t.Fatalf("encoded update %s does not contain %s", data, want)
	}
}

func TestGraphUpdateNilData(t *testing.T) {
	data, err := Encode(NewGraphUpdate(nil))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"data":[]`) {
		t.Fatalf("nil data must encode as [], got %s", data)
	}
}

func TestTranscriptUpdateMirrorsInbound(t *testing.T) {
	in := InboundMessage{
		Type:       TypeTranscript,
		Speaker:    "Speaker_2",
		Text:       "the migration is done",
		IsFinal:    true,
		Confidence: ptr(0.7),
		Timestamp:  "2026-08-31T12:00:02",
	}

	out := NewTranscriptUpdate(in)
	if out.Type != TypeTranscriptUpdate {
		t.Errorf("type = %q, want %q", out.Type, TypeTranscriptUpdate)
	}
	if out.Speaker != in.Speaker || out.Text != in.Text || out.IsFinal != in.IsFinal || out.Timestamp != in.Timestamp {
		t.Errorf("update %+v does not mirror inbound %+v", out, in)
	}
	if out.Confidence == nil || *out.Confidence != 0.7 {
		t.Errorf("confidence not mirrored: %v", out.Confidence)
	}

	data, err := Encode(out)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"timestamp":"2026-08-31T12:00:02"`) {
		t.Errorf("timestamp not echoed verbatim: %s", data)
	}
}

func ptr(f float64) *float64 { return &f }
