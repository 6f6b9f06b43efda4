package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/meetingnexus/backend/pkg/ai"
	"github.com/meetingnexus/backend/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

// BatchLine is one attributed transcript line handed to extraction.
type BatchLine struct {
	Speaker string
	Text    string
}

// Extractor is the gateway to the knowledge-extraction model. It turns a
// batch of transcript lines into graph assertions.
//
// An Extractor should be created using NewExtractor.
type Extractor struct {
	aiClient    ai.GraphAIClient
	tokenBudget int
	count       func(string) int

	encInit sync.Once
	enc     *tiktoken.Tiktoken
}

// NewExtractorParams defines the configuration parameters for creating a new
// Extractor.
//
// TokenBudget caps the size of the transcript handed to the model; batches
// over budget are trimmed from the oldest line down.
type NewExtractorParams struct {
	AIClient    ai.GraphAIClient
	TokenBudget int
}

// NewExtractor creates and returns a new Extractor configured with the
// provided parameters.
func NewExtractor(params NewExtractorParams) *Extractor {
	budget := params.TokenBudget
	if budget <= 0 {
		budget = 3000
	}
	e := &Extractor{
		aiClient:    params.AIClient,
		tokenBudget: budget,
	}
	e.count = e.countTokens
	return e
}

type assertionTerms []string

// UnmarshalJSON tolerates non-array elements in the assertion list; they
// decode to nil and are dropped during validation instead of aborting the
// whole response.
func (t *assertionTerms) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		*t = nil
		return nil
	}
	*t = terms
	return nil
}

type extractResponse struct {
	Assertions []assertionTerms `json:"assertions" jsonschema_description:"Assertions extracted from the transcript: 3-element relationship arrays or 2-element color arrays"`
}

// UnmarshalJSON accepts either the object form {"assertions": [...]} or a
// bare top-level array, since models frequently return the array alone.
func (r *extractResponse) UnmarshalJSON(data []byte) error {
	type plain extractResponse
	var obj plain
	if err := json.Unmarshal(data, &obj); err == nil {
		r.Assertions = obj.Assertions
		return nil
	}

	var arr []assertionTerms
	if err := json.Unmarshal(data, &arr); err == nil {
		r.Assertions = arr
		return nil
	}

	return errors.New("response is neither an assertion object nor an array")
}

// Extract sends the batch to the extraction model and returns the well-formed
// assertions from its response, in model order. Unparsable model output is an
// empty result, not a failure; transport errors propagate.
func (e *Extractor) Extract(ctx context.Context, batch []BatchLine) ([]Assertion, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	lines := truncateBatch(batch, e.tokenBudget, e.count)
	if trimmed := len(batch) - len(lines); trimmed > 0 {
		logger.Warn("[Extract] Batch over token budget, dropping oldest lines", "dropped", trimmed)
	}

	var res extractResponse
	err := e.aiClient.GenerateCompletionWithFormat(
		ctx,
		"extract_assertions",
		"Extract graph assertions from a batch of meeting transcript lines.",
		formatBatch(lines),
		&res,
		ai.WithSystemPrompts(ai.ExtractAssertionsPrompt),
	)
	if err != nil {
		if errors.Is(err, ai.ErrUnparsable) {
			logger.Warn("[Extract] Model output unparsable, treating as empty", "err", err)
			return nil, nil
		}
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	assertions := make([]Assertion, 0, len(res.Assertions))
	for _, terms := range res.Assertions {
		a := AssertionFromTerms(terms)
		if err := a.Validate(); err != nil {
			logger.Debug("[Extract] Skipping malformed assertion", "terms", strings.Join(terms, "|"))
			continue
		}
		assertions = append(assertions, a)
	}
	return assertions, nil
}

func formatBatch(lines []BatchLine) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.Speaker)
		b.WriteString(": ")
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// truncateBatch drops lines from the front until the formatted batch fits the
// token budget. The newest line is always kept.
func truncateBatch(lines []BatchLine, budget int, count func(string) int) []BatchLine {
	for len(lines) > 1 && count(formatBatch(lines)) > budget {
		lines = lines[1:]
	}
	return lines
}

// countTokens counts with the o200k_base encoding, falling back to a bytes/4
// estimate when the encoder cannot be initialized (e.g. no cached vocabulary).
func (e *Extractor) countTokens(s string) int {
	e.encInit.Do(func() {
		enc, err := tiktoken.GetEncoding("o200k_base")
		if err != nil {
			logger.Debug("[Extract] Token encoder unavailable, using estimate", "err", err)
			return
		}
		e.enc = enc
	})
	if e.enc == nil {
		return len(s) / 4
	}
	return len(e.enc.Encode(s, nil, nil))
}
