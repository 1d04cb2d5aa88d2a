package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"verdict/internal/resolver"
)

// GamesSource builds the source descriptor for a games-by-date endpoint.
// These APIs key on a date path segment rather than epoch query params, so
// no window keys are set. The API key goes into the subscription header the
// sports-data providers expect.
func GamesSource(primaryURL, fallbackURL, date, apiKey string) resolver.SourceConfig {
	header := http.Header{}
	if apiKey != "" {
		header.Set("Ocp-Apim-Subscription-Key", apiKey)
	}

	return resolver.SourceConfig{
		PrimaryURL:  joinDate(primaryURL, date),
		FallbackURL: joinDate(fallbackURL, date),
		Header:      header,
	}
}

func joinDate(base, date string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + date
}

// scoreboardGame is the provider's game object, reduced to the fields the
// winner rule needs. Team fields are abbreviations; score fields are null
// before tip-off.
type scoreboardGame struct {
	Status       string `json:"Status"`
	HomeTeam     string `json:"HomeTeam"`
	AwayTeam     string `json:"AwayTeam"`
	HomeScore    *int   `json:"HomeTeamScore"`
	AwayScore    *int   `json:"AwayTeamScore"`
	HomeRuns     *int   `json:"HomeTeamRuns"`
	AwayRuns     *int   `json:"AwayTeamRuns"`
}

// ParseGames returns a parser that picks the game matching the two team
// abbreviations out of a date's slate. A slate that doesn't include the
// matchup is the Empty result, not an error: the request worked, the data
// just isn't there.
func ParseGames(teamA, teamB string) resolver.ParseFunc {
	return func(body []byte) (resolver.FetchResult, error) {
		var games []scoreboardGame
		if err := json.Unmarshal(body, &games); err != nil {
			return resolver.FetchResult{}, fmt.Errorf("decoding games array: %w", err)
		}
		if len(games) == 0 {
			return resolver.Empty(), nil
		}

		for _, g := range games {
			if !matchup(g, teamA, teamB) {
				continue
			}
			return resolver.FromGame(resolver.GameRecord{
				Status:    normalizeStatus(g.Status),
				HomeTeam:  g.HomeTeam,
				AwayTeam:  g.AwayTeam,
				HomeScore: firstScore(g.HomeScore, g.HomeRuns),
				AwayScore: firstScore(g.AwayScore, g.AwayRuns),
			}), nil
		}
		return resolver.Empty(), nil
	}
}

func matchup(g scoreboardGame, teamA, teamB string) bool {
	return (strings.EqualFold(g.HomeTeam, teamA) && strings.EqualFold(g.AwayTeam, teamB)) ||
		(strings.EqualFold(g.HomeTeam, teamB) && strings.EqualFold(g.AwayTeam, teamA))
}

// firstScore prefers the points-style field but falls back to the runs
// field baseball payloads use.
func firstScore(points, runs *int) *int {
	if points != nil {
		return points
	}
	return runs
}

// normalizeStatus folds provider status strings onto the closed status set.
// Overtime finals ("F/OT", "F/SO") count as final; unknown strings are
// conservatively treated as still in progress.
func normalizeStatus(s string) resolver.GameStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled", "pre-game", "pregame":
		return resolver.StatusScheduled
	case "final", "f/ot", "f/so", "closed":
		return resolver.StatusFinal
	case "postponed":
		return resolver.StatusPostponed
	case "canceled", "cancelled":
		return resolver.StatusCanceled
	case "inprogress", "in progress", "halftime":
		return resolver.StatusInProgress
	default:
		return resolver.StatusInProgress
	}
}
