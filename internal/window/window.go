package window

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeSpec is returned when a date, time, or timezone input cannot
// be interpreted. It is the one condition callers are expected to treat as a
// configuration bug rather than a degraded outcome.
var ErrInvalidTimeSpec = errors.New("invalid time spec")

// TimeWindow bounds one data query in UTC epoch milliseconds.
type TimeWindow struct {
	StartMS int64
	EndMS   int64
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return time.Duration(w.EndMS-w.StartMS) * time.Millisecond
}

// Make converts a local wall-clock date and time in a named IANA zone into a
// UTC window of the given length. The zone's offset is resolved for that
// specific calendar date, so windows straddling a DST transition come out
// right. It never falls back to UTC on a bad zone name.
func Make(date, clock, tzName string, d time.Duration) (TimeWindow, error) {
	if d <= 0 {
		return TimeWindow{}, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidTimeSpec, d)
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidTimeSpec, tzName)
	}

	layout := "2006-01-02 15:04"
	if len(clock) == len("15:04:05") {
		layout = "2006-01-02 15:04:05"
	}

	start, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: parsing %q %q: %v", ErrInvalidTimeSpec, date, clock, err)
	}

	startMS := start.UTC().UnixMilli()
	return TimeWindow{
		StartMS: startMS,
		EndMS:   startMS + d.Milliseconds(),
	}, nil
}

// MakeDay returns the full local calendar day as a UTC window. Used for
// game-by-date lookups where the upstream keys on a date, not a timestamp.
func MakeDay(date, tzName string) (TimeWindow, error) {
	return Make(date, "00:00", tzName, 24*time.Hour)
}
