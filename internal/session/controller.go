package session

import (
	"context"
	"sync"
	"time"

	"github.com/meetingnexus/backend/internal/hub"
	"github.com/meetingnexus/backend/pkg/graph"
	"github.com/meetingnexus/backend/pkg/logger"
)

// DefaultSessionID is used when a client does not name a session.
const DefaultSessionID = "default"

// Config holds the batching and extraction knobs shared by all sessions.
type Config struct {
	BatchMaxSegments   int
	BatchFlushInterval time.Duration
	ExtractionTimeout  time.Duration
}

// Controller owns all live sessions, keyed by session id. Sessions are fully
// isolated from each other; the controller only guards the registry itself.
//
// A Controller should be created using NewController.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	extractor Extractor
	feed      TranscriptFeed
	cfg       Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewControllerParams defines the configuration parameters for creating a
// new Controller. Feed may be nil when no transcript feed is configured.
type NewControllerParams struct {
	Extractor Extractor
	Feed      TranscriptFeed
	Config    Config
}

// NewController creates and returns a new Controller configured with the
// provided parameters.
func NewController(params NewControllerParams) *Controller {
	cfg := params.Config
	if cfg.BatchMaxSegments <= 0 {
		cfg.BatchMaxSegments = 5
	}
	if cfg.BatchFlushInterval <= 0 {
		cfg.BatchFlushInterval = 30 * time.Second
	}
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = 60 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sessions:  make(map[string]*Session),
		extractor: params.Extractor,
		feed:      params.Feed,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Session returns the live session for id, creating it on first use. An
// empty id maps to DefaultSessionID.
func (c *Controller) Session(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		return s
	}

	s := &Session{
		ID:           id,
		participants: make(map[string]struct{}),
		store:        graph.NewStore(),
		window: NewWindow(WindowConfig{
			MaxSegments:   c.cfg.BatchMaxSegments,
			FlushInterval: c.cfg.BatchFlushInterval,
		}, time.Now()),
		hub:       hub.New(),
		extractor: c.extractor,
		feed:      c.feed,
		timeout:   c.cfg.ExtractionTimeout,
		ctx:       c.ctx,
		wg:        &c.wg,
		now:       time.Now,
	}
	c.sessions[id] = s
	logger.Debug("[Controller] Created session", "session", id)
	return s
}

// Lookup returns the live session for id without creating one. An empty id
// maps to DefaultSessionID.
func (c *Controller) Lookup(id string) (*Session, bool) {
	if id == "" {
		id = DefaultSessionID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// SessionIDs lists the ids of all live sessions.
func (c *Controller) SessionIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Close cancels in-flight extractions, waits for them to land, and tears
// down all subscriber channels.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	for _, s := range sessions {
		s.hub.Close()
	}
}
