package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the evidence tables. recorded_at holds Unix nanoseconds;
// required and capacity hold decimal shannons because they may exceed the
// signed 64-bit range of an SQLite INTEGER.
const Schema = `
CREATE TABLE IF NOT EXISTS evidence (
    id          TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL,
    suite       TEXT NOT NULL DEFAULT '',
    case_name   TEXT NOT NULL DEFAULT '',
    recorded_at INTEGER NOT NULL,

    identifier  TEXT NOT NULL,
    rule_digest TEXT NOT NULL DEFAULT '',

    verdict     TEXT NOT NULL,
    kind        TEXT NOT NULL DEFAULT '',
    exit_code   INTEGER NOT NULL,
    final_state TEXT NOT NULL,

    price       INTEGER NOT NULL,
    required    TEXT NOT NULL,
    capacity    TEXT NOT NULL,
    steps       INTEGER NOT NULL,

    duration_ns INTEGER NOT NULL,
    error       TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evidence_recorded_at ON evidence(recorded_at);
CREATE INDEX IF NOT EXISTS idx_evidence_run_id ON evidence(run_id);
CREATE INDEX IF NOT EXISTS idx_evidence_suite ON evidence(suite, case_name);
CREATE INDEX IF NOT EXISTS idx_evidence_verdict ON evidence(verdict, kind);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO evidence (
    id, run_id, suite, case_name, recorded_at,
    identifier, rule_digest,
    verdict, kind, exit_code, final_state,
    price, required, capacity, steps,
    duration_ns, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `id, run_id, suite, case_name, recorded_at,
    identifier, rule_digest,
    verdict, kind, exit_code, final_state,
    price, required, capacity, steps,
    duration_ns, error`
