package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"verdict/internal/config"
	"verdict/internal/resolver"
	"verdict/internal/rule"
)

// Replayer re-classifies stored fetch results with the rules currently
// configured, flagging resolutions whose code would come out differently
// today. Useful after a rule or label change to audit past answers.
type Replayer struct {
	db  *sql.DB
	cfg *config.Config
}

func NewReplayer(db *sql.DB, cfg *config.Config) *Replayer {
	return &Replayer{db: db, cfg: cfg}
}

// ReplaySummary counts the outcome of one replay pass.
type ReplaySummary struct {
	Replayed   int
	Matched    int
	Mismatched int
	Skipped    int
}

// Run replays every stored resolution for questions still present in the
// config. Resolutions for questions no longer configured are skipped.
func (r *Replayer) Run() (*ReplaySummary, error) {
	rules := make(map[string]rule.Rule, len(r.cfg.Questions))
	labels := make(map[string]rule.Labels, len(r.cfg.Questions))
	for _, q := range r.cfg.Questions {
		rl, err := rule.FromQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		rules[q.ID] = rl
		labels[q.ID] = rule.LabelsFromQuestion(q)
	}

	rows, err := r.db.Query(`
		SELECT id, question_id, code, results_json, resolved_at
		FROM resolutions ORDER BY resolved_at`)
	if err != nil {
		return nil, fmt.Errorf("loading resolutions: %w", err)
	}
	defer rows.Close()

	summary := &ReplaySummary{}
	for rows.Next() {
		var id int64
		var questionID, storedCode, resultsJSON, resolvedAt string
		if err := rows.Scan(&id, &questionID, &storedCode, &resultsJSON, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}

		rl, ok := rules[questionID]
		if !ok {
			summary.Skipped++
			continue
		}

		var results []resolver.FetchResult
		if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
			slog.Warn("skipping undecodable stored results",
				"resolution", id,
				"question", questionID,
				"error", err,
			)
			summary.Skipped++
			continue
		}

		verdict := rl.Classify(results...)
		code := labels[questionID].Code(verdict)
		summary.Replayed++

		if code == storedCode {
			summary.Matched++
			continue
		}
		summary.Mismatched++
		slog.Warn("replay mismatch",
			"resolution", id,
			"question", questionID,
			"stored_code", storedCode,
			"replayed_code", code,
			"replayed_verdict", string(verdict),
			"resolved_at", resolvedAt,
		)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resolutions: %w", err)
	}

	slog.Info("=== REPLAY RESULTS ===",
		"replayed", summary.Replayed,
		"matched", summary.Matched,
		"mismatched", summary.Mismatched,
		"skipped", summary.Skipped,
	)
	return summary, nil
}
