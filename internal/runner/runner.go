package runner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"verdict/internal/config"
	"verdict/internal/feed"
	"verdict/internal/resolver"
	"verdict/internal/rule"
)

// Runner resolves the configured questions: fetch, classify, print, record.
type Runner struct {
	cfg    *config.Config
	client *resolver.Client
	cache  *feed.Cache
	db     *sql.DB
	out    io.Writer
}

func New(cfg *config.Config, client *resolver.Client, cache *feed.Cache, db *sql.DB, out io.Writer) *Runner {
	return &Runner{cfg: cfg, client: client, cache: cache, db: db, out: out}
}

// ResolveAll compiles every question and resolves each one in turn. It
// returns an error only for configuration problems surfaced at compile
// time; once fetching starts, every failure downstream is absorbed into
// a label so a recommendation is always printed per question.
func (r *Runner) ResolveAll(ctx context.Context) error {
	plans, err := compile(r.cfg)
	if err != nil {
		return err
	}

	for _, p := range plans {
		r.resolveOne(ctx, p)
	}
	return nil
}

func (r *Runner) resolveOne(ctx context.Context, p plan) {
	results := make([]resolver.FetchResult, 0, len(p.lookups))
	for _, l := range p.lookups {
		results = append(results, r.fetch(ctx, l))
	}

	verdict := p.rule.Classify(results...)
	code := p.labels.Code(verdict)

	slog.Info("question resolved",
		"question", p.q.ID,
		"rule", p.rule.Name(),
		"verdict", string(verdict),
		"code", code,
	)
	fmt.Fprintf(r.out, "recommendation: %s\n", code)

	if err := r.record(p, verdict, code, results); err != nil {
		slog.Error("failed to record resolution", "question", p.q.ID, "error", err)
	}
}

func (r *Runner) fetch(ctx context.Context, l lookup) resolver.FetchResult {
	if res, ok := r.cache.Get(l.key); ok {
		return res
	}
	res := r.client.FetchWindow(ctx, l.src, l.win, l.parse)
	r.cache.Set(l.key, res)
	return res
}

func (r *Runner) record(p plan, verdict rule.Verdict, code string, results []resolver.FetchResult) error {
	if r.db == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(`
		INSERT INTO questions (id, kind, source, rule, symbol, side_a, side_b, first_seen_at, last_resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_resolved_at = excluded.last_resolved_at`,
		p.q.ID, p.q.Kind, p.q.Source, p.q.Rule, p.q.Symbol, p.q.SideA, p.q.SideB, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting question: %w", err)
	}

	kind := resolver.KindError
	var sourceUsed string
	for _, res := range results {
		if res.Usable() {
			kind = res.Kind
			sourceUsed = res.Source
			break
		}
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO resolutions (question_id, rule, verdict, code, result_kind, results_json, source_used, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.q.ID, p.q.Rule, string(verdict), code, kind.String(), string(data), sourceUsed, now,
	)
	if err != nil {
		return fmt.Errorf("inserting resolution: %w", err)
	}
	return nil
}

// Watch resolves all questions immediately, then again on every tick
// until the context is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	interval := r.cfg.Watch.Interval.Duration
	slog.Info("watch starting", "interval", interval)

	if err := r.ResolveAll(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := r.ResolveAll(ctx); err != nil {
				return err
			}
		}
	}
}
