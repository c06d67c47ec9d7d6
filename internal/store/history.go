package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"contractlens/internal/risk"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	party         TEXT NOT NULL,
	risk_level    TEXT NOT NULL DEFAULT '',
	risk_score    INTEGER NOT NULL DEFAULT 0,
	issue_count   INTEGER NOT NULL DEFAULT 0,
	artifact_path TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

type RunRecord struct {
	RunID        string `db:"run_id" json:"run_id"`
	CreatedAt    string `db:"created_at" json:"created_at"`
	SourcePath   string `db:"source_path" json:"source_path"`
	Party        string `db:"party" json:"party"`
	RiskLevel    string `db:"risk_level" json:"risk_level"`
	RiskScore    int    `db:"risk_score" json:"risk_score"`
	IssueCount   int    `db:"issue_count" json:"issue_count"`
	ArtifactPath string `db:"artifact_path" json:"artifact_path"`
	Error        string `db:"error" json:"error,omitempty"`
}

// History indexes completed runs so past reviews can be listed without
// re-reading every artifact.
type History struct {
	db *sqlx.DB
}

func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

func (h *History) Record(result risk.PipelineResult, artifactPath string) (RunRecord, error) {
	rec := RunRecord{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		SourcePath:   result.SourcePath,
		Party:        string(result.PartyPerspective),
		IssueCount:   len(result.MergedIssues),
		ArtifactPath: artifactPath,
		Error:        result.Error,
	}
	if result.Report != nil {
		rec.RiskLevel = string(result.Report.RiskLevel)
		rec.RiskScore = result.Report.RiskScore
	}
	_, err := h.db.NamedExec(`INSERT INTO runs
		(run_id, created_at, source_path, party, risk_level, risk_score, issue_count, artifact_path, error)
		VALUES (:run_id, :created_at, :source_path, :party, :risk_level, :risk_score, :issue_count, :artifact_path, :error)`, rec)
	return rec, err
}

func (h *History) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []RunRecord
	err := h.db.Select(&records, `SELECT * FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	return records, err
}
