// Package screening implements the deterministic keyword screening engine.
// It decides whether an application email matches the required keyword set
// and records which terms fired, so every verdict can be audited.
package screening

import (
	"fmt"
	"strings"
	"unicode"
)

// KeywordSpec maps a canonical screening term to its accepted surface forms.
// Variants are matched case-insensitively; the canonical term itself always
// counts as a variant.
type KeywordSpec struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Variants  []string `yaml:"variants" json:"variants"`
}

// Input is the text of a single application email.
type Input struct {
	Subject string
	Body    string
}

// Result is the verdict for one screened application. It is created once and
// never mutated afterward.
type Result struct {
	// Matched lists canonical keywords found, in keyword-table order.
	Matched []string `json:"matched"`
	// MatchedVariants records, per matched canonical keyword, the variants
	// that actually occurred in the corpus.
	MatchedVariants map[string][]string `json:"matched_variants,omitempty"`
	// Count is the number of distinct canonical keywords matched.
	Count int `json:"count"`
	// IsMatch is true iff Count >= the configured threshold.
	IsMatch bool `json:"is_match"`
}

type variant struct {
	label  string
	tokens []string
}

type keyword struct {
	canonical string
	variants  []variant
}

// Engine screens application text against a fixed keyword table. It is a
// pure function of its inputs and safe for concurrent use.
type Engine struct {
	keywords  []keyword
	threshold int
}

// NewEngine validates the keyword table and threshold once and compiles the
// variant token sequences. A malformed table or non-positive threshold is a
// configuration error; no input is ever screened against a bad table.
func NewEngine(specs []KeywordSpec, threshold int) (*Engine, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("screening threshold must be at least 1, got %d", threshold)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("keyword table is empty")
	}

	keywords := make([]keyword, 0, len(specs))
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		canonical := strings.TrimSpace(spec.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("keyword table contains an entry with empty canonical term")
		}
		lower := strings.ToLower(canonical)
		if seen[lower] {
			return nil, fmt.Errorf("duplicate canonical keyword %q", canonical)
		}
		seen[lower] = true

		kw := keyword{canonical: canonical}
		added := make(map[string]bool)

		// The canonical term's lowercase form is always part of the
		// variant set.
		for _, v := range append([]string{lower}, spec.Variants...) {
			label := strings.ToLower(strings.TrimSpace(v))
			if label == "" || added[label] {
				continue
			}
			tokens := tokenize(label)
			if len(tokens) == 0 {
				return nil, fmt.Errorf("keyword %q has variant %q with no matchable tokens", canonical, v)
			}
			added[label] = true
			kw.variants = append(kw.variants, variant{label: label, tokens: tokens})
		}

		keywords = append(keywords, kw)
	}

	return &Engine{keywords: keywords, threshold: threshold}, nil
}

// Threshold returns the configured minimum distinct keyword count.
func (e *Engine) Threshold() int { return e.threshold }

// Keywords returns the canonical keywords in table order.
func (e *Engine) Keywords() []string {
	out := make([]string, len(e.keywords))
	for i, kw := range e.keywords {
		out[i] = kw.canonical
	}
	return out
}

// Screen combines subject and body into one corpus and produces the verdict.
// An empty corpus yields zero matches, not an error.
func (e *Engine) Screen(in Input) Result {
	corpus := tokenize(strings.ToLower(in.Subject + " " + in.Body))

	single := make(map[string]bool, len(corpus))
	for _, tok := range corpus {
		single[tok] = true
	}

	result := Result{MatchedVariants: make(map[string][]string)}

	for _, kw := range e.keywords {
		var fired []string
		for _, v := range kw.variants {
			if matchTokens(corpus, single, v.tokens) {
				fired = append(fired, v.label)
			}
		}
		if len(fired) > 0 {
			result.Matched = append(result.Matched, kw.canonical)
			result.MatchedVariants[kw.canonical] = fired
		}
	}

	result.Count = len(result.Matched)
	result.IsMatch = result.Count >= e.threshold
	return result
}

// Screen is a one-shot convenience: build an engine from the given table and
// threshold and screen a single input with it.
func Screen(subject, body string, specs []KeywordSpec, threshold int) (Result, error) {
	engine, err := NewEngine(specs, threshold)
	if err != nil {
		return Result{}, err
	}
	return engine.Screen(Input{Subject: subject, Body: body}), nil
}

// tokenize lowercases the text and splits it into alphanumeric tokens, so a
// variant can only match on whole-word boundaries ("ai" never matches inside
// "affair"). Variants and corpus go through the same tokenizer, keeping the
// two sides consistent.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// matchTokens reports whether seq occurs in the corpus as a consecutive
// token sequence.
func matchTokens(corpus []string, single map[string]bool, seq []string) bool {
	if len(seq) == 1 {
		return single[seq[0]]
	}

	for i := 0; i+len(seq) <= len(corpus); i++ {
		found := true
		for j, want := range seq {
			if corpus[i+j] != want {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}
