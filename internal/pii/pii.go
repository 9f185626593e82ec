// Package pii implements the best-effort privacy gate applied to free text
// before it is embedded or forwarded to a hosted model. The heuristics are
// regex based and intentionally approximate: on ambiguous input they lean
// towards refusing or masking.
package pii

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens substituted by Redact.
const (
	NameToken  = "[NAME]"
	PhoneToken = "[PHONE]"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
	// healthCardPattern is a placeholder for provincial health-card numbers; it
	// matches any standalone 10-digit figure.
	healthCardPattern = regexp.MustCompile(`\b\d{10}\b`)
	// sinPattern matches 9-digit SIN-like groupings. It also hits order
	// numbers and fee-code lists, so only strict mode uses it.
	sinPattern  = regexp.MustCompile(`\b\d{3}[-\s]?\d{3}[-\s]?\d{3}\b`)
	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
)

var (
	detectors       = []*regexp.Regexp{emailPattern, phonePattern, healthCardPattern}
	strictDetectors = []*regexp.Regexp{emailPattern, phonePattern, healthCardPattern, sinPattern}
)

// Contains reports whether text looks like it carries personal information:
// an email-like token, a phone-like digit grouping or a bare 10-digit number.
// Any single match trips it.
func Contains(text string) bool {
	return matchAny(detectors, text)
}

// ContainsStrict is Contains plus the 9-digit SIN-like grouping.
func ContainsStrict(text string) bool {
	return matchAny(strictDetectors, text)
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Redact masks two-word capitalised names and phone-like digit groupings.
// Text matching neither pattern is returned unchanged.
func Redact(text string) string {
	out := phonePattern.ReplaceAllString(text, PhoneToken)
	return namePattern.ReplaceAllString(out, NameToken)
}

// Filter is a PII handling policy. Apply returns the text to forward
// downstream and whether the request must be refused instead.
type Filter interface {
	Apply(text string) (out string, refused bool)
	Mode() string
}

// DetectPolicy refuses any text that Contains personal information.
type DetectPolicy struct{}

func (DetectPolicy) Mode() string { return "detect" }

func (DetectPolicy) Apply(text string) (string, bool) {
	return text, Contains(text)
}

// RedactPolicy never refuses; it forwards the redacted text.
type RedactPolicy struct{}

func (RedactPolicy) Mode() string { return "redact" }

func (RedactPolicy) Apply(text string) (string, bool) {
	return Redact(text), false
}

// StrictPolicy redacts first and refuses when the wider strict detector set
// still trips on the result.
type StrictPolicy struct{}

func (StrictPolicy) Mode() string { return "strict" }

func (StrictPolicy) Apply(text string) (string, bool) {
	out := Redact(text)
	return out, ContainsStrict(out)
}

// Off passes text through untouched.
type Off struct{}

func (Off) Mode() string { return "off" }

func (Off) Apply(text string) (string, bool) { return text, false }

// New returns the Filter for a configured mode.
func New(mode string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "detect", "":
		return DetectPolicy{}, nil
	case "redact":
		return RedactPolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	case "off":
		return Off{}, nil
	default:
		return nil, fmt.Errorf("unknown pii mode %q", mode)
	}
}
