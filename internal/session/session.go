// Package session owns all per-meeting mutable state: lifecycle, participant
// tracking, transcript batching, extraction orchestration, and the graph
// store. All mutations of one session are serialized behind its mutex.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/meetingnexus/backend/internal/hub"
	"github.com/meetingnexus/backend/internal/protocol"
	"github.com/meetingnexus/backend/internal/util"
	"github.com/meetingnexus/backend/pkg/graph"
	"github.com/meetingnexus/backend/pkg/logger"
)

// Extractor turns a transcript batch into graph assertions. It is the only
// collaborator that may block for a network round trip.
type Extractor interface {
	Extract(ctx context.Context, batch []graph.BatchLine) ([]graph.Assertion, error)
}

// TranscriptFeed receives every final transcript line for external
// consumers. Publishing is fire-and-forget.
type TranscriptFeed interface {
	PublishTranscript(sessionID string, payload []byte)
}

// Session is the authoritative state of one meeting. Exactly one live
// instance exists per session id; the Controller hands out the same pointer
// to every connection.
type Session struct {
	ID string

	mu               sync.Mutex
	active           bool
	participants     map[string]struct{}
	participantOrder []string
	store            *graph.Store
	window           *Window
	hub              *hub.Hub

	// extracting guards the one-in-flight extraction rule; generation
	// invalidates in-flight results when the graph is cleared underneath
	// them.
	extracting bool
	generation uint64

	extractor Extractor
	feed      TranscriptFeed
	timeout   time.Duration

	ctx context.Context
	wg  *sync.WaitGroup
	now func() time.Time
}

// HandleMessage applies one decoded client message to the session.
func (s *Session) HandleMessage(msg protocol.InboundMessage) {
	switch msg.Type {
	case protocol.TypeTranscript:
		s.handleTranscript(msg)
	case protocol.TypeStartMeeting:
		s.Start()
	case protocol.TypeStopMeeting:
		s.Stop()
	case protocol.TypeClearGraph:
		s.Clear()
	}
}

// handleTranscript mirrors the segment to all subscribers and, while the
// meeting is active, buffers final speech lines for extraction. Segments
// arriving while inactive still update participants and still broadcast, so
// viewers see speech before the meeting is started.
func (s *Session) handleTranscript(msg protocol.InboundMessage) {
	msg.Text = util.SanitizeTranscriptText(msg.Text)

	s.mu.Lock()
	s.addParticipantLocked(msg.Speaker)
	update := protocol.NewTranscriptUpdate(msg)
	s.broadcastLocked(update)

	if s.active && msg.IsFinal {
		offered := s.window.Offer(Segment{
			Speaker:    msg.Speaker,
			Text:       msg.Text,
			Timestamp:  string(msg.Timestamp),
			CapturedAt: s.now(),
		})
		if offered {
			s.maybeFlushLocked()
		}
	}
	s.mu.Unlock()

	if s.feed != nil && msg.IsFinal {
		if data, err := protocol.Encode(update); err == nil {
			s.feed.PublishTranscript(s.ID, data)
		}
	}
}

// Start transitions to active and clears the participant set. The graph is
// kept; it grows across restarts until explicitly cleared. Starting an
// already active session is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.participants = make(map[string]struct{})
	s.participantOrder = nil
	s.window.Reset(s.now())
	logger.Info("[Session] Meeting started", "session", s.ID)
	s.broadcastLocked(protocol.NewMeetingStarted())
}

// Stop transitions to inactive, flushing whatever is still buffered so
// trailing speech is not lost. Stopping an inactive session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.flushLocked()
	logger.Info("[Session] Meeting stopped", "session", s.ID)
	s.broadcastLocked(protocol.NewMeetingStopped())
}

// Clear resets graph, buffer, and participants without touching the
// active flag. An in-flight extraction result is discarded when it lands.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear()
	s.window.Reset(s.now())
	s.participants = make(map[string]struct{})
	s.participantOrder = nil
	s.generation++
	logger.Info("[Session] Graph cleared", "session", s.ID)
	s.broadcastLocked(protocol.NewClearGraph())
}

// Subscribe registers an outbound channel and queues the full session
// snapshot as its first message, under the session lock so no merge can
// interleave between snapshot and registration.
func (s *Session) Subscribe() (*hub.Subscriber, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.hub.Subscribe()
	if !ok {
		return nil, false
	}
	state := protocol.NewMeetingState(s.active, s.store.Snapshot(), s.participantsLocked())
	data, err := protocol.Encode(state)
	if err != nil {
		logger.Error("[Session] Failed to encode meeting state", "session", s.ID, "err", err)
		s.hub.Unsubscribe(sub.ID)
		return nil, false
	}
	sub.Send <- data
	return sub, true
}

// Unsubscribe removes a subscriber registered via Subscribe.
func (s *Session) Unsubscribe(id string) {
	s.hub.Unsubscribe(id)
}

// SendTo queues an event to one subscriber only, e.g. an error echo for a
// malformed message. Dropped silently if the subscriber is gone or backed
// up.
func (s *Session) SendTo(id string, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		return
	}
	s.hub.Send(id, data)
}

// Active reports the lifecycle flag.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Snapshot returns a value copy of the current graph.
func (s *Session) Snapshot() graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Participants returns the speakers seen so far, in first-seen order.
func (s *Session) Participants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantsLocked()
}

func (s *Session) participantsLocked() []string {
	out := make([]string, len(s.participantOrder))
	copy(out, s.participantOrder)
	return out
}

func (s *Session) addParticipantLocked(speaker string) {
	if speaker == "" {
		return
	}
	if _, ok := s.participants[speaker]; ok {
		return
	}
	s.participants[speaker] = struct{}{}
	s.participantOrder = append(s.participantOrder, speaker)
}

func (s *Session) broadcastLocked(v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		logger.Error("[Session] Failed to encode event", "session", s.ID, "err", err)
		return
	}
	s.hub.Publish(data)
}

// maybeFlushLocked drains and extracts when a flush threshold is met and no
// extraction is outstanding. While one is outstanding the window keeps
// accumulating; the completion handler re-checks.
func (s *Session) maybeFlushLocked() {
	if s.extracting || !s.window.ShouldFlush(s.now()) {
		return
	}
	s.flushLocked()
}

// flushLocked unconditionally drains the window and starts an extraction if
// anything was buffered and none is in flight.
func (s *Session) flushLocked() {
	if s.extracting {
		return
	}
	batch := s.window.Drain(s.now())
	if len(batch) == 0 {
		return
	}
	s.extracting = true
	s.wg.Add(1)
	go s.runExtraction(s.generation, batch)
}

func (s *Session) runExtraction(generation uint64, batch []Segment) {
	defer s.wg.Done()

	lines := make([]graph.BatchLine, 0, len(batch))
	for _, seg := range batch {
		lines = append(lines, graph.BatchLine{Speaker: seg.Speaker, Text: seg.Text})
	}

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}
	assertions, err := s.extractor.Extract(ctx, lines)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extracting = false

	switch {
	case err != nil:
		// Best effort: the batch is dropped, the session keeps running.
		logger.Error("[Session] Extraction failed, dropping batch", "session", s.ID, "segments", len(batch), "err", err)
	case generation != s.generation:
		logger.Debug("[Session] Graph cleared during extraction, discarding result", "session", s.ID)
	case len(assertions) > 0:
		delta := s.store.Merge(assertions)
		if len(delta.Applied) > 0 {
			logger.Info("[Session] Merged extraction result",
				"session", s.ID,
				"assertions", len(delta.Applied),
				"nodesCreated", delta.NodesCreated,
				"edgesCreated", delta.EdgesCreated,
			)
			s.broadcastLocked(protocol.NewGraphUpdate(delta.Applied))
		}
	}

	// A flush deferred behind this extraction runs now. After stop, any
	// tail buffered while active is still drained.
	if s.active {
		s.maybeFlushLocked()
	} else if s.window.Len() > 0 {
		s.flushLocked()
	}
}
