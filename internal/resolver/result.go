package resolver

import (
	"github.com/shopspring/decimal"
)

// ResultKind tags which variant of FetchResult is populated.
type ResultKind int

const (
	// KindError means both primary and fallback attempts failed.
	KindError ResultKind = iota
	// KindEmpty means a request succeeded but returned no usable rows.
	KindEmpty
	// KindCandle carries an OHLC candle from a klines endpoint.
	KindCandle
	// KindGame carries a game record from a sports-scores endpoint.
	KindGame
)

func (k ResultKind) String() string {
	switch k {
	case KindCandle:
		return "candle"
	case KindGame:
		return "game"
	case KindEmpty:
		return "empty"
	default:
		return "error"
	}
}

// GameStatus is the lifecycle state of a game record.
type GameStatus string

const (
	StatusScheduled  GameStatus = "Scheduled"
	StatusInProgress GameStatus = "InProgress"
	StatusFinal      GameStatus = "Final"
	StatusPostponed  GameStatus = "Postponed"
	StatusCanceled   GameStatus = "Canceled"
)

// Candle is one fixed-interval OHLC price summary. Prices are decimals
// because exchanges serve them as strings and threshold comparisons must be
// exact at the boundary.
type Candle struct {
	OpenTimeMS int64
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
}

// GameRecord is one game with its status and scores. Scores are pointers
// because pre-game records carry none.
type GameRecord struct {
	Status    GameStatus
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
}

// FetchResult is the tagged outcome of one FetchWindow call. Exactly one of
// Candle/Game is set when Kind says so; Err holds a diagnostic message for
// KindError.
type FetchResult struct {
	Kind   ResultKind
	Candle *Candle
	Game   *GameRecord
	Err    string
	// Source is the endpoint URL that produced a usable result, empty
	// for error and empty outcomes.
	Source string
}

// Errorf builds a KindError result.
func Errorf(msg string) FetchResult {
	return FetchResult{Kind: KindError, Err: msg}
}

// Empty is the no-rows result.
func Empty() FetchResult {
	return FetchResult{Kind: KindEmpty}
}

// FromCandle wraps a candle.
func FromCandle(c Candle) FetchResult {
	return FetchResult{Kind: KindCandle, Candle: &c}
}

// FromGame wraps a game record.
func FromGame(g GameRecord) FetchResult {
	return FetchResult{Kind: KindGame, Game: &g}
}

// Usable reports whether the result carries data a rule can classify.
func (r FetchResult) Usable() bool {
	return r.Kind == KindCandle || r.Kind == KindGame
}
