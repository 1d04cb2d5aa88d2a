package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"verdict/internal/resolver"
)

// KlinesSource builds the source descriptor for an exchange klines endpoint.
// The window is embedded by the resolver under startKey/endKey; symbol,
// interval, and row limit ride along on every attempt. An API key, when the
// endpoint wants one, goes into the X-MBX-APIKEY header.
func KlinesSource(primaryURL, fallbackURL, symbol, interval string, limit int, startKey, endKey, apiKey string) resolver.SourceConfig {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	header := http.Header{}
	if apiKey != "" {
		header.Set("X-MBX-APIKEY", apiKey)
	}

	if startKey == "" {
		startKey = "startTime"
	}
	if endKey == "" {
		endKey = "endTime"
	}

	return resolver.SourceConfig{
		PrimaryURL:  primaryURL,
		FallbackURL: fallbackURL,
		Query:       query,
		Header:      header,
		StartKey:    startKey,
		EndKey:      endKey,
	}
}

// ParseKlines decodes a klines payload: an array of rows shaped
// [openTime, open, high, low, close, volume, ...] with prices as strings.
// Multi-row payloads are reduced client-side: open from the first row,
// close from the last, high/low scanned across all rows. A well-formed
// empty array is the Empty result; anything off-shape is a parse error.
func ParseKlines(body []byte) (resolver.FetchResult, error) {
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return resolver.FetchResult{}, fmt.Errorf("decoding klines array: %w", err)
	}
	if len(rows) == 0 {
		return resolver.Empty(), nil
	}

	candles := make([]resolver.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return resolver.FetchResult{}, fmt.Errorf("row %d: %w", i, err)
		}
		candles = append(candles, c)
	}

	return resolver.FromCandle(reduceCandles(candles)), nil
}

func parseKlineRow(row []any) (resolver.Candle, error) {
	if len(row) < 5 {
		return resolver.Candle{}, fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return resolver.Candle{}, fmt.Errorf("openTime is %T, want number", row[0])
	}

	prices := make([]decimal.Decimal, 4)
	for i, col := range row[1:5] {
		s, ok := col.(string)
		if !ok {
			return resolver.Candle{}, fmt.Errorf("column %d is %T, want string price", i+1, col)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return resolver.Candle{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		prices[i] = d
	}

	return resolver.Candle{
		OpenTimeMS: int64(openTime),
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
	}, nil
}

// reduceCandles folds a span of candles into one: the caller-side min/max
// scan used by questions whose window covers many rows.
func reduceCandles(candles []resolver.Candle) resolver.Candle {
	out := candles[0]
	for _, c := range candles[1:] {
		if c.High.GreaterThan(out.High) {
			out.High = c.High
		}
		if c.Low.LessThan(out.Low) {
			out.Low = c.Low
		}
		out.Close = c.Close
	}
	return out
}
