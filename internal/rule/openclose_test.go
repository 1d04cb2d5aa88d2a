package rule

import (
	"testing"
)

func TestOpenClose_UpAndDown(t *testing.T) {
	r := OpenClose{Tie: TieUp}

	if got := r.Classify(candle("104000.0", "105000", "103000", "104250.5")); got != VerdictUp {
		t.Errorf("close > open -> %s, want up", got)
	}
	if got := r.Classify(candle("104000", "105000", "103000", "103500")); got != VerdictDown {
		t.Errorf("close < open -> %s, want down", got)
	}
}

func TestOpenClose_TiePolicies(t *testing.T) {
	tied := candle("100", "101", "99", "100")

	cases := []struct {
		policy TiePolicy
		want   Verdict
	}{
		{TieUp, VerdictUp},
		{TieDown, VerdictDown},
		{TieSplit, VerdictEqual},
	}

	for _, tc := range cases {
		got := OpenClose{Tie: tc.policy}.Classify(tied)
		if got != tc.want {
			t.Errorf("tie policy %s -> %s, want %s", tc.policy, got, tc.want)
		}
	}
}

func TestOpenClose_DecimalEquality(t *testing.T) {
	// "100.00" and "100" differ as strings but are the same price; a tie
	// must still be detected.
	tied := candle("100.00", "101", "99", "100")
	if got := (OpenClose{Tie: TieSplit}).Classify(tied); got != VerdictEqual {
		t.Errorf("100.00 vs 100 -> %s, want equal", got)
	}
}

func TestParseTiePolicy(t *testing.T) {
	got, err := ParseTiePolicy("")
	if err != nil || got != TieUp {
		t.Errorf("empty policy -> (%s, %v), want (up, nil)", got, err)
	}
	if _, err := ParseTiePolicy("sideways"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
