package ledger

const schema = `
-- Artifacts table (one row per produced stego image)
CREATE TABLE IF NOT EXISTS artifacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    input_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    digest TEXT NOT NULL,
    payload_bytes INTEGER NOT NULL,
    algorithm TEXT NOT NULL,
    sealed BOOLEAN NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_output_path ON artifacts(output_path);
`
