// Package scoring implements the compliance scoring engine: response
// normalization, section and overall aggregation, and risk band
// classification. It is intentionally dependency-free: it imports nothing
// from internal/ and can be tested without a database.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedResponse is returned when a response value is neither a
// known categorical token nor a numeric value in [0,1]. It is surfaced at
// construction time so an unknown token can never reach the aggregators and
// silently score as zero.
var ErrUnrecognizedResponse = errors.New("scoring: unrecognized response value")

// responseKind discriminates the Response sum type. The zero value is
// deliberately invalid so an uninitialised Response is never scored.
type responseKind uint8

const (
	kindUnset responseKind = iota
	kindYes
	kindPartial
	kindNo
	kindNA
	kindNumeric
)

// Categorical answer tokens as they appear on the wire and in stored
// documents.
const (
	TokenYes     = "yes"
	TokenPartial = "partial"
	TokenNo      = "no"
	TokenNA      = "na"
)

// Response is a tagged questionnaire answer: one of the four categorical
// tokens, or an already-normalized numeric value in [0,1]. Construct one via
// the exported variables (Yes, Partial, No, NotApplicable), Numeric, or
// ParseResponse — never by struct literal.
type Response struct {
	kind    responseKind
	numeric float64
}

// The four categorical responses.
var (
	Yes           = Response{kind: kindYes}
	Partial       = Response{kind: kindPartial}
	No            = Response{kind: kindNo}
	NotApplicable = Response{kind: kindNA}
)

// Numeric wraps a pre-normalized value in [0,1]. Values outside the range
// are rejected with ErrUnrecognizedResponse.
func Numeric(v float64) (Response, error) {
	if v < 0 || v > 1 {
		return Response{}, fmt.Errorf("%w: numeric %v outside [0,1]", ErrUnrecognizedResponse, v)
	}
	return Response{kind: kindNumeric, numeric: v}, nil
}

// ParseResponse maps a raw categorical token to a Response. Matching is
// case-insensitive and ignores surrounding whitespace; anything outside the
// known token set is an ErrUnrecognizedResponse.
func ParseResponse(token string) (Response, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case TokenYes:
		return Yes, nil
	case TokenPartial:
		return Partial, nil
	case TokenNo:
		return No, nil
	case TokenNA:
		return NotApplicable, nil
	default:
		return Response{}, fmt.Errorf("%w: %q", ErrUnrecognizedResponse, token)
	}
}

// IsNA reports whether the response is the not-applicable token.
func (r Response) IsNA() bool { return r.kind == kindNA }

// IsNumeric reports whether the response carries a numeric value.
func (r Response) IsNumeric() bool { return r.kind == kindNumeric }

// Value returns the numeric payload. Meaningful only when IsNumeric() is
// true; zero otherwise.
func (r Response) Value() float64 { return r.numeric }

// String returns the wire token for categorical responses, or the formatted
// value for numeric ones. The zero Response renders as "unset".
func (r Response) String() string {
	switch r.kind {
	case kindYes:
		return TokenYes
	case kindPartial:
		return TokenPartial
	case kindNo:
		return TokenNo
	case kindNA:
		return TokenNA
	case kindNumeric:
		return fmt.Sprintf("%g", r.numeric)
	default:
		return "unset"
	}
}

// MarshalJSON encodes categorical responses as their token string and
// numeric responses as a JSON number, matching the document shape produced
// by the form frontend.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.kind == kindNumeric {
		return json.Marshal(r.numeric)
	}
	if r.kind == kindUnset {
		return nil, fmt.Errorf("%w: cannot marshal unset response", ErrUnrecognizedResponse)
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts either a token string or a number in [0,1].
// Anything else fails with ErrUnrecognizedResponse so malformed submissions
// are rejected at decode time, not swallowed at scoring time.
func (r *Response) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		parsed, err := ParseResponse(token)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		parsed, err := Numeric(value)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnrecognizedResponse, string(data))
}
