package graph

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedAssertion marks an assertion whose shape or content is invalid.
var ErrMalformedAssertion = errors.New("malformed assertion")

// AssertionKind discriminates the two assertion shapes.
type AssertionKind string

const (
	// KindRelation is a labeled relationship between two entities,
	// encoded on the wire as ["source", "relation", "target"].
	KindRelation AssertionKind = "relation"
	// KindRecolor is a color hint for one entity,
	// encoded on the wire as ["entity", "#rrggbb"].
	KindRecolor AssertionKind = "recolor"
)

// Assertion is one atomic fact derived from transcript text: either a labeled
// relationship between two entities or a color hint for one entity. The wire
// form is a JSON array of 2 or 3 strings.
//
// A zero-valued Assertion is malformed; decoding an unrecognized shape yields
// one rather than an error so that a single bad element never aborts the
// surrounding batch.
type Assertion struct {
	Kind AssertionKind

	// Relation assertions.
	Source   string
	Relation string
	Target   string

	// Recolor assertions.
	Entity string
	Color  string
}

// NewRelation builds a relationship assertion.
func NewRelation(source, relation, target string) Assertion {
	return Assertion{
		Kind:     KindRelation,
		Source:   source,
		Relation: relation,
		Target:   target,
	}
}

// NewRecolor builds a color-hint assertion.
func NewRecolor(entity, color string) Assertion {
	return Assertion{
		Kind:   KindRecolor,
		Entity: entity,
		Color:  color,
	}
}

// Validate reports whether the assertion is well-formed: a relation needs
// three non-empty strings, a recolor needs a non-empty entity and a
// hash-prefixed color token.
func (a Assertion) Validate() error {
	switch a.Kind {
	case KindRelation:
		if a.Source == "" || a.Relation == "" || a.Target == "" {
			return ErrMalformedAssertion
		}
	case KindRecolor:
		if a.Entity == "" || !IsColorToken(a.Color) {
			return ErrMalformedAssertion
		}
	default:
		return ErrMalformedAssertion
	}
	return nil
}

func (a Assertion) terms() []string {
	switch a.Kind {
	case KindRelation:
		return []string{a.Source, a.Relation, a.Target}
	case KindRecolor:
		return []string{a.Entity, a.Color}
	}
	return nil
}

// MarshalJSON encodes the assertion as its wire array form.
func (a Assertion) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.terms())
}

// UnmarshalJSON decodes the wire array form. Unrecognized shapes produce a
// malformed (zero-kind) assertion, not an error.
func (a *Assertion) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		*a = Assertion{}
		return nil
	}
	*a = AssertionFromTerms(terms)
	return nil
}

// AssertionFromTerms converts a raw string tuple into an Assertion. A
// 3-element tuple is a relation, a 2-element tuple whose second element is a
// color token is a recolor; anything else is malformed.
func AssertionFromTerms(terms []string) Assertion {
	switch len(terms) {
	case 3:
		return NewRelation(terms[0], terms[1], terms[2])
	case 2:
		if IsColorToken(terms[1]) {
			return NewRecolor(terms[0], terms[1])
		}
	}
	return Assertion{}
}

// IsColorToken reports whether s looks like a display color value
// (hash-prefixed hex convention).
func IsColorToken(s string) bool {
	return len(s) > 1 && strings.HasPrefix(s, "#")
}
