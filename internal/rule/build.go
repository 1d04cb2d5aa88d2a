package rule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"verdict/internal/config"
)

// FromQuestion constructs the rule a question asks for, validating every
// parameter up front.
func FromQuestion(q config.Question) (Rule, error) {
	switch q.Rule {
	case "threshold":
		field, err := ParseCandleField(q.Field)
		if err != nil {
			return nil, err
		}
		dir, err := ParseDirection(q.Direction)
		if err != nil {
			return nil, err
		}
		return Threshold{
			Field:     field,
			Threshold: decimal.NewFromFloat(q.Threshold),
			Direction: dir,
		}, nil

	case "open_close":
		tie, err := ParseTiePolicy(q.Tie)
		if err != nil {
			return nil, err
		}
		return OpenClose{Tie: tie}, nil

	case "two_point":
		return TwoPoint{}, nil

	case "winner":
		if q.SideA == "" || q.SideB == "" {
			return nil, fmt.Errorf("winner rule needs side_a and side_b")
		}
		return Winner{SideA: q.SideA, SideB: q.SideB}, nil

	default:
		return nil, fmt.Errorf("unknown rule %q", q.Rule)
	}
}

// LabelsFromQuestion merges a question's label overrides over the defaults.
func LabelsFromQuestion(q config.Question) Labels {
	labels := Labels{}
	for verdict, code := range q.Labels {
		labels[Verdict(verdict)] = code
	}
	return labels.Merged()
}
