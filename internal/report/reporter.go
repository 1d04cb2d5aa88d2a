package report

import (
	"log/slog"
)

// LogReport logs the resolution report as structured JSON.
func LogReport(r *Report) {
	slog.Info("=== RESOLUTION REPORT ===",
		"total_resolutions", r.TotalResolutions,
		"questions", r.Questions,
		"error_results", r.ErrorResults,
		"empty_results", r.EmptyResults,
	)

	for code, count := range r.CodeCounts {
		slog.Info("code count", "code", code, "count", count)
	}

	for questionID, code := range r.LatestCodes {
		slog.Info("latest resolution", "question", questionID, "code", code)
	}

	for name, stats := range r.RuleStats {
		slog.Info("rule stats",
			"rule", name,
			"resolutions", stats.Count,
			"fallbacks", stats.Fallbacks,
			"fallback_rate", stats.FallbackRate,
		)
	}
}
