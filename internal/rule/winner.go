package rule

import (
	"strings"

	"verdict/internal/resolver"
)

// Winner answers "did team A beat team B". Side keys are team abbreviations
// matched case-insensitively against the game record's home/away teams.
// Postponed and canceled games are unresolved regardless of any scores; a
// game that is not yet final is too early to call.
type Winner struct {
	SideA string
	SideB string
}

func (w Winner) Name() string { return "winner" }

func (w Winner) Classify(results ...resolver.FetchResult) Verdict {
	if !usable(results) || results[0].Kind != resolver.KindGame {
		return VerdictUnknown
	}
	g := results[0].Game

	switch g.Status {
	case resolver.StatusPostponed, resolver.StatusCanceled:
		return VerdictUnresolved
	case resolver.StatusFinal:
	default:
		return VerdictTooEarly
	}

	if g.HomeScore == nil || g.AwayScore == nil {
		return VerdictUnknown
	}

	sideAScore, sideBScore, ok := w.assignScores(g)
	if !ok {
		return VerdictUnknown
	}

	switch {
	case sideAScore > sideBScore:
		return VerdictSideA
	case sideBScore > sideAScore:
		return VerdictSideB
	default:
		// A drawn final has no winner; treat it as unresolvable rather
		// than guessing a side.
		return VerdictUnresolved
	}
}

func (w Winner) assignScores(g *resolver.GameRecord) (sideA, sideB int, ok bool) {
	switch {
	case equalTeam(w.SideA, g.HomeTeam) && equalTeam(w.SideB, g.AwayTeam):
		return *g.HomeScore, *g.AwayScore, true
	case equalTeam(w.SideA, g.AwayTeam) && equalTeam(w.SideB, g.HomeTeam):
		return *g.AwayScore, *g.HomeScore, true
	}
	return 0, 0, false
}

func equalTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
