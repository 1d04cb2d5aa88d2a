package report

import (
	"database/sql"
	"fmt"
)

// Tracker computes resolution metrics from the database.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Report contains aggregate resolution metrics.
type Report struct {
	TotalResolutions int
	Questions        int
	ErrorResults     int
	EmptyResults     int
	CodeCounts       map[string]int
	RuleStats        map[string]RuleStats
	LatestCodes      map[string]string
}

// RuleStats contains per-rule resolution quality.
type RuleStats struct {
	Count        int
	Fallbacks    int
	FallbackRate float64
}

// Generate computes the full resolution report.
func (t *Tracker) Generate() (*Report, error) {
	r := &Report{
		CodeCounts:  make(map[string]int),
		RuleStats:   make(map[string]RuleStats),
		LatestCodes: make(map[string]string),
	}

	if err := t.computeOverall(r); err != nil {
		return nil, fmt.Errorf("computing overall stats: %w", err)
	}
	if err := t.computeCodeCounts(r); err != nil {
		return nil, fmt.Errorf("computing code counts: %w", err)
	}
	if err := t.computeRuleStats(r); err != nil {
		return nil, fmt.Errorf("computing rule stats: %w", err)
	}
	if err := t.computeLatestCodes(r); err != nil {
		return nil, fmt.Errorf("computing latest codes: %w", err)
	}

	return r, nil
}

func (t *Tracker) computeOverall(r *Report) error {
	row := t.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT question_id),
		       COALESCE(SUM(CASE WHEN result_kind = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN result_kind = 'empty' THEN 1 ELSE 0 END), 0)
		FROM resolutions`)
	return row.Scan(&r.TotalResolutions, &r.Questions, &r.ErrorResults, &r.EmptyResults)
}

func (t *Tracker) computeCodeCounts(r *Report) error {
	rows, err := t.db.Query(`SELECT code, COUNT(*) FROM resolutions GROUP BY code`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return err
		}
		r.CodeCounts[code] = count
	}
	return rows.Err()
}

func (t *Tracker) computeRuleStats(r *Report) error {
	rows, err := t.db.Query(`
		SELECT rule, COUNT(*),
		       COALESCE(SUM(CASE WHEN verdict IN ('unknown', 'too_early') THEN 1 ELSE 0 END), 0)
		FROM resolutions GROUP BY rule`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var stats RuleStats
		if err := rows.Scan(&name, &stats.Count, &stats.Fallbacks); err != nil {
			return err
		}
		if stats.Count > 0 {
			stats.FallbackRate = float64(stats.Fallbacks) / float64(stats.Count)
		}
		r.RuleStats[name] = stats
	}
	return rows.Err()
}

func (t *Tracker) computeLatestCodes(r *Report) error {
	rows, err := t.db.Query(`
		SELECT question_id, code
		FROM resolutions
		WHERE id IN (SELECT MAX(id) FROM resolutions GROUP BY question_id)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, code string
		if err := rows.Scan(&questionID, &code); err != nil {
			return err
		}
		r.LatestCodes[questionID] = code
	}
	return rows.Err()
}
