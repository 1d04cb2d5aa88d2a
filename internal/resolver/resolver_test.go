package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"verdict/internal/window"
)

func testWindow() window.TimeWindow {
	return window.TimeWindow{StartMS: 1750190400000, EndMS: 1750194000000}
}

func parseRows(body []byte) (FetchResult, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return FetchResult{}, err
	}
	if len(rows) == 0 {
		return Empty(), nil
	}
	return FromCandle(Candle{
		Open:  decimal.NewFromInt(1),
		Close: decimal.NewFromInt(2),
	}), nil
}

func newTestClient() *Client {
	// Rate limiting off so tests don't sleep.
	return NewClient(2*time.Second, 0, 1)
}

func TestFetchWindow_PrimarySucceeds(t *testing.T) {
	calls := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer primary.Close()

	fallbackCalls := 0
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls++
	}))
	defer fallback.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindCandle {
		t.Fatalf("Kind = %s, want candle", res.Kind)
	}
	if calls != 1 {
		t.Errorf("primary called %d times, want 1", calls)
	}
	if fallbackCalls != 0 {
		t.Errorf("fallback called %d times, want 0", fallbackCalls)
	}
}

func TestFetchWindow_FallbackGetsIdenticalParams(t *testing.T) {
	primaryCalls := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	var gotQuery url.Values
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer fallback.Close()

	win := testWindow()
	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
		Query:       url.Values{"symbol": {"BTCUSDT"}, "interval": {"1h"}},
		StartKey:    "startTime",
		EndKey:      "endTime",
	}, win, parseRows)

	if res.Kind != KindCandle {
		t.Fatalf("Kind = %s, want candle", res.Kind)
	}
	if primaryCalls != 1 {
		t.Errorf("primary retried: %d calls, want exactly 1", primaryCalls)
	}
	if gotQuery.Get("symbol") != "BTCUSDT" || gotQuery.Get("interval") != "1h" {
		t.Errorf("fallback query missing caller params: %v", gotQuery)
	}
	if gotQuery.Get("startTime") != "1750190400000" || gotQuery.Get("endTime") != "1750194000000" {
		t.Errorf("fallback query missing window params: %v", gotQuery)
	}
}

func TestFetchWindow_EmptyPayloadTriggersFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer primary.Close()

	fallbackCalls := 0
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls++
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer fallback.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindCandle {
		t.Fatalf("Kind = %s, want candle", res.Kind)
	}
	if fallbackCalls != 1 {
		t.Errorf("fallback called %d times, want 1", fallbackCalls)
	}
}

func TestFetchWindow_BothFailReturnsError(t *testing.T) {
	totalCalls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		totalCalls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	primary := httptest.NewServer(handler)
	defer primary.Close()
	fallback := httptest.NewServer(handler)
	defer fallback.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindError {
		t.Fatalf("Kind = %s, want error", res.Kind)
	}
	if res.Err == "" {
		t.Error("expected diagnostic message on error result")
	}
	if totalCalls != 2 {
		t.Errorf("total requests = %d, want exactly 2", totalCalls)
	}
}

func TestFetchWindow_BothEmptyReturnsEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	primary := httptest.NewServer(handler)
	defer primary.Close()
	fallback := httptest.NewServer(handler)
	defer fallback.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindEmpty {
		t.Fatalf("Kind = %s, want empty", res.Kind)
	}
}

func TestFetchWindow_NoFallbackConfigured(t *testing.T) {
	calls := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL: primary.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindError {
		t.Fatalf("Kind = %s, want error", res.Kind)
	}
	if calls != 1 {
		t.Errorf("requests = %d, want 1", calls)
	}
}

func TestFetchWindow_MalformedPayloadFallsThrough(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer fallback.Close()

	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindCandle {
		t.Fatalf("Kind = %s, want candle", res.Kind)
	}
}

func TestFetchWindow_TransportErrorFallsThrough(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer fallback.Close()

	// Unroutable primary: connection refused.
	res := newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL:  "http://127.0.0.1:1",
		FallbackURL: fallback.URL,
	}, testWindow(), parseRows)

	if res.Kind != KindCandle {
		t.Fatalf("Kind = %s, want candle", res.Kind)
	}
}

func TestFetchWindow_HeadersForwarded(t *testing.T) {
	var gotKey string
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		w.Write([]byte(`[[1,"2","3","4","5"]]`))
	}))
	defer primary.Close()

	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", "sekrit")

	newTestClient().FetchWindow(context.Background(), SourceConfig{
		PrimaryURL: primary.URL,
		Header:     header,
	}, testWindow(), parseRows)

	if gotKey != "sekrit" {
		t.Errorf("api key header = %q, want %q", gotKey, "sekrit")
	}
}
