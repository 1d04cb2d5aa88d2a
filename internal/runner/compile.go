package runner

import (
	"fmt"
	"time"

	"verdict/internal/config"
	"verdict/internal/feed"
	"verdict/internal/resolver"
	"verdict/internal/rule"
	"verdict/internal/window"
)

// plan is one question compiled into everything needed to resolve it: the
// classification rule, the label map, and one or two concrete lookups.
type plan struct {
	q       config.Question
	rule    rule.Rule
	labels  rule.Labels
	lookups []lookup
}

type lookup struct {
	src   resolver.SourceConfig
	win   window.TimeWindow
	parse resolver.ParseFunc
	// key is the fetch-cache key. It includes the parse identity so two
	// questions sharing an endpoint and window but selecting different
	// data out of the payload never serve each other's results.
	key string
}

// compile turns the configured questions into plans, failing fast on
// anything that is a configuration bug: unknown rule parameters, invalid
// date/time/timezone specs, or a missing required API key. After compile
// succeeds, resolution can only degrade to labels, never error.
func compile(cfg *config.Config) ([]plan, error) {
	plans := make([]plan, 0, len(cfg.Questions))
	for _, q := range cfg.Questions {
		p, err := compileQuestion(cfg, q)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func compileQuestion(cfg *config.Config, q config.Question) (plan, error) {
	src := cfg.Sources[q.Source]
	apiKey, err := src.APIKey()
	if err != nil {
		return plan{}, err
	}

	r, err := rule.FromQuestion(q)
	if err != nil {
		return plan{}, err
	}

	lookups, err := buildLookups(q, src, apiKey)
	if err != nil {
		return plan{}, err
	}

	return plan{
		q:       q,
		rule:    r,
		labels:  rule.LabelsFromQuestion(q),
		lookups: lookups,
	}, nil
}

func buildLookups(q config.Question, src config.SourceEntry, apiKey string) ([]lookup, error) {
	switch q.Kind {
	case "crypto":
		return cryptoLookups(q, src, apiKey)
	case "sports":
		return sportsLookups(q, src, apiKey)
	default:
		return nil, fmt.Errorf("unknown kind %q", q.Kind)
	}
}

func cryptoLookups(q config.Question, src config.SourceEntry, apiKey string) ([]lookup, error) {
	if q.Symbol == "" {
		return nil, fmt.Errorf("crypto question needs a symbol")
	}
	interval := q.Interval
	if interval == "" {
		interval = "1h"
	}

	d := q.Duration.Duration
	if d == 0 {
		// A single candle for point lookups, a full hour otherwise.
		if q.Rule == "two_point" {
			d = time.Minute
		} else {
			d = time.Hour
		}
	}

	points := []struct{ date, clock string }{{q.Date, q.Time}}
	if q.Rule == "two_point" {
		points = append(points, struct{ date, clock string }{q.DateB, q.TimeB})
	}

	lookups := make([]lookup, 0, len(points))
	for _, pt := range points {
		win, err := window.Make(pt.date, pt.clock, q.Timezone, d)
		if err != nil {
			return nil, err
		}
		klines := feed.KlinesSource(src.PrimaryURL, src.FallbackURL, q.Symbol, interval, q.Limit, src.StartKey, src.EndKey, apiKey)
		lookups = append(lookups, lookup{
			src:   klines,
			win:   win,
			parse: feed.ParseKlines,
			key:   feed.Key(klines, win, ""),
		})
	}
	return lookups, nil
}

func sportsLookups(q config.Question, src config.SourceEntry, apiKey string) ([]lookup, error) {
	if q.SideA == "" || q.SideB == "" {
		return nil, fmt.Errorf("sports question needs side_a and side_b")
	}

	// Validating through the day window catches bad dates and zones up
	// front even though the upstream keys on the date path, not the window.
	win, err := window.MakeDay(q.Date, q.Timezone)
	if err != nil {
		return nil, err
	}

	games := feed.GamesSource(src.PrimaryURL, src.FallbackURL, q.Date, apiKey)
	return []lookup{{
		src:   games,
		win:   win,
		parse: feed.ParseGames(q.SideA, q.SideB),
		key:   feed.Key(games, win, q.SideA+"/"+q.SideB),
	}}, nil
}
