package rule

import (
	"verdict/internal/resolver"
)

// Verdict is the classification result before it is mapped to an outcome
// code. Rules produce verdicts; per-question label maps turn them into the
// p1..p4 codes callers print.
type Verdict string

const (
	VerdictYes        Verdict = "yes"
	VerdictNo         Verdict = "no"
	VerdictUp         Verdict = "up"
	VerdictDown       Verdict = "down"
	VerdictEqual      Verdict = "equal"
	VerdictSideA      Verdict = "side_a"
	VerdictSideB      Verdict = "side_b"
	VerdictUnresolved Verdict = "unresolved" // postponed or canceled game
	VerdictTooEarly   Verdict = "too_early"  // game not final yet
	VerdictUnknown    Verdict = "unknown"    // data could not be fetched
)

// Rule is the interface all classification rules implement. Classify takes
// one fetch result for single-lookup rules; TwoPoint consumes two. Every
// rule maps an error or empty result to VerdictUnknown rather than failing.
type Rule interface {
	Name() string
	Classify(results ...resolver.FetchResult) Verdict
}

// usable reports whether every provided result carries classifiable data.
func usable(results []resolver.FetchResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Usable() {
			return false
		}
	}
	return true
}

// Labels maps verdicts to the closed set of outcome codes. Meaning is
// assigned per question; the defaults follow the usual convention
// (up/yes/side_a -> p2, down/no/side_b -> p1, equal -> p3, anything
// unresolvable -> p4).
type Labels map[Verdict]string

// DefaultLabels returns the conventional verdict-to-code mapping.
func DefaultLabels() Labels {
	return Labels{
		VerdictYes:        "p2",
		VerdictNo:         "p1",
		VerdictUp:         "p2",
		VerdictDown:       "p1",
		VerdictEqual:      "p3",
		VerdictSideA:      "p2",
		VerdictSideB:      "p1",
		VerdictUnresolved: "p3",
		VerdictTooEarly:   "p4",
		VerdictUnknown:    "p4",
	}
}

// Code resolves a verdict to its outcome code, falling back to the default
// mapping and finally to p4 so a label is always produced.
func (l Labels) Code(v Verdict) string {
	if code, ok := l[v]; ok && code != "" {
		return code
	}
	if code, ok := DefaultLabels()[v]; ok {
		return code
	}
	return "p4"
}

// Merged returns DefaultLabels overlaid with the receiver's overrides.
func (l Labels) Merged() Labels {
	out := DefaultLabels()
	for v, code := range l {
		if code != "" {
			out[v] = code
		}
	}
	return out
}
