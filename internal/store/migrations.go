package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    rule TEXT NOT NULL,
    symbol TEXT,
    side_a TEXT,
    side_b TEXT,
    first_seen_at TEXT NOT NULL DEFAULT (datetime('now')),
    last_resolved_at TEXT
);

CREATE TABLE IF NOT EXISTS resolutions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id TEXT NOT NULL REFERENCES questions(id),
    rule TEXT NOT NULL,
    verdict TEXT NOT NULL,
    code TEXT NOT NULL,
    result_kind TEXT NOT NULL,
    results_json TEXT NOT NULL,
    source_used TEXT,
    resolved_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_resolutions_question_time ON resolutions(question_id, resolved_at);
CREATE INDEX IF NOT EXISTS idx_resolutions_code ON resolutions(code);
`
