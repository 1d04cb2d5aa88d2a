package rule

import (
	"verdict/internal/resolver"
)

// TwoPoint compares the closes of two independently fetched candles (price
// at time A vs price at time B) and yields up, down, or equal.
type TwoPoint struct{}

func (TwoPoint) Name() string { return "two_point" }

func (TwoPoint) Classify(results ...resolver.FetchResult) Verdict {
	if len(results) != 2 || !usable(results) {
		return VerdictUnknown
	}
	if results[0].Kind != resolver.KindCandle || results[1].Kind != resolver.KindCandle {
		return VerdictUnknown
	}

	first := results[0].Candle.Close
	second := results[1].Candle.Close

	switch second.Cmp(first) {
	case 1:
		return VerdictUp
	case -1:
		return VerdictDown
	default:
		return VerdictEqual
	}
}
