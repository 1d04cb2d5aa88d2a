package rule

import (
	"fmt"

	"verdict/internal/resolver"
)

// TiePolicy decides how open == close is classified. Questions disagree on
// this: most fold ties into "up", some treat a true tie as a distinct 50-50
// outcome, so it is a per-question setting.
type TiePolicy string

const (
	TieUp    TiePolicy = "up"    // close >= open is up (the common form)
	TieDown  TiePolicy = "down"  // close <= open is down
	TieSplit TiePolicy = "split" // a tie is its own verdict
)

// OpenClose answers "did the candle close up or down".
type OpenClose struct {
	Tie TiePolicy
}

func (o OpenClose) Name() string { return "open_close" }

func (o OpenClose) Classify(results ...resolver.FetchResult) Verdict {
	if !usable(results) || results[0].Kind != resolver.KindCandle {
		return VerdictUnknown
	}
	c := results[0].Candle

	cmp := c.Close.Cmp(c.Open)
	switch {
	case cmp > 0:
		return VerdictUp
	case cmp < 0:
		return VerdictDown
	}

	switch o.Tie {
	case TieDown:
		return VerdictDown
	case TieSplit:
		return VerdictEqual
	default:
		return VerdictUp
	}
}

// ParseTiePolicy validates a configured tie policy, defaulting to TieUp for
// the empty string.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch TiePolicy(s) {
	case "":
		return TieUp, nil
	case TieUp, TieDown, TieSplit:
		return TiePolicy(s), nil
	}
	return "", fmt.Errorf("unknown tie policy %q", s)
}
