package rule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"verdict/internal/resolver"
)

// CandleField selects which candle price a threshold rule inspects.
type CandleField string

const (
	FieldHigh  CandleField = "high"
	FieldLow   CandleField = "low"
	FieldClose CandleField = "close"
)

// Direction selects which side of the threshold answers "yes".
type Direction string

const (
	AtOrAbove Direction = "at_or_above"
	AtOrBelow Direction = "at_or_below"
)

// Threshold answers "did price X reach level Y" questions. The boundary is
// inclusive: a high exactly equal to the threshold counts as reached.
type Threshold struct {
	Field     CandleField
	Threshold decimal.Decimal
	Direction Direction
}

func (t Threshold) Name() string { return "threshold" }

func (t Threshold) Classify(results ...resolver.FetchResult) Verdict {
	if !usable(results) || results[0].Kind != resolver.KindCandle {
		return VerdictUnknown
	}
	c := results[0].Candle

	var value decimal.Decimal
	switch t.Field {
	case FieldHigh:
		value = c.High
	case FieldLow:
		value = c.Low
	case FieldClose:
		value = c.Close
	default:
		return VerdictUnknown
	}

	switch t.Direction {
	case AtOrAbove:
		if value.GreaterThanOrEqual(t.Threshold) {
			return VerdictYes
		}
		return VerdictNo
	case AtOrBelow:
		if value.LessThanOrEqual(t.Threshold) {
			return VerdictYes
		}
		return VerdictNo
	default:
		return VerdictUnknown
	}
}

// ParseCandleField validates a configured field name.
func ParseCandleField(s string) (CandleField, error) {
	switch CandleField(s) {
	case FieldHigh, FieldLow, FieldClose:
		return CandleField(s), nil
	}
	return "", fmt.Errorf("unknown candle field %q", s)
}

// ParseDirection validates a configured direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case AtOrAbove, AtOrBelow:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown threshold direction %q", s)
}
