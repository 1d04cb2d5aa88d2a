package rule

import (
	"testing"

	"github.com/shopspring/decimal"

	"verdict/internal/resolver"
)

func candle(open, high, low, close string) resolver.FetchResult {
	return resolver.FromCandle(resolver.Candle{
		Open:  decimal.RequireFromString(open),
		High:  decimal.RequireFromString(high),
		Low:   decimal.RequireFromString(low),
		Close: decimal.RequireFromString(close),
	})
}

func TestThreshold_InclusiveBoundary(t *testing.T) {
	r := Threshold{
		Field:     FieldHigh,
		Threshold: decimal.RequireFromString("100.0"),
		Direction: AtOrAbove,
	}

	cases := []struct {
		name string
		high string
		want Verdict
	}{
		{"exactly at threshold", "100.0", VerdictYes},
		{"just below", "99.999999", VerdictNo},
		{"above", "100.000001", VerdictYes},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Classify(candle("90", tc.high, "80", "95"))
			if got != tc.want {
				t.Errorf("high=%s -> %s, want %s", tc.high, got, tc.want)
			}
		})
	}
}

func TestThreshold_AtOrBelow(t *testing.T) {
	r := Threshold{
		Field:     FieldLow,
		Threshold: decimal.RequireFromString("50"),
		Direction: AtOrBelow,
	}

	if got := r.Classify(candle("60", "70", "50", "65")); got != VerdictYes {
		t.Errorf("low touching threshold -> %s, want yes", got)
	}
	if got := r.Classify(candle("60", "70", "50.01", "65")); got != VerdictNo {
		t.Errorf("low above threshold -> %s, want no", got)
	}
}

func TestThreshold_CloseField(t *testing.T) {
	r := Threshold{
		Field:     FieldClose,
		Threshold: decimal.RequireFromString("104000"),
		Direction: AtOrAbove,
	}

	if got := r.Classify(candle("104000", "105000", "103000", "104250.5")); got != VerdictYes {
		t.Errorf("close above threshold -> %s, want yes", got)
	}
}

func TestThreshold_WrongResultKind(t *testing.T) {
	r := Threshold{Field: FieldHigh, Threshold: decimal.NewFromInt(1), Direction: AtOrAbove}

	game := resolver.FromGame(resolver.GameRecord{Status: resolver.StatusFinal})
	if got := r.Classify(game); got != VerdictUnknown {
		t.Errorf("game record through threshold rule -> %s, want unknown", got)
	}
}

func TestParseCandleField(t *testing.T) {
	for _, valid := range []string{"high", "low", "close"} {
		if _, err := ParseCandleField(valid); err != nil {
			t.Errorf("ParseCandleField(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseCandleField("open"); err == nil {
		t.Error("expected error for unsupported field")
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("at_or_above"); err != nil {
		t.Error(err)
	}
	if _, err := ParseDirection("above"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
