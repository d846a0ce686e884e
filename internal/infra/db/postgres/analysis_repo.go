package postgres

import (
    "context"
    "database/sql"
    "encoding/json"
    "strings"
    "time"

    domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

type AnalysisRepository struct {
    db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
    return &AnalysisRepository{db: db}
}

// Migrate creates the analysis_requests table when missing
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
    const q = `
CREATE TABLE IF NOT EXISTS analysis_requests (
  task_id         TEXT        PRIMARY KEY,
  created_at      TIMESTAMPTZ NOT NULL,
  question        TEXT        NOT NULL,
  files_processed JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status          TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_requests_created ON analysis_requests (created_at DESC);
`
    _, err := r.db.ExecContext(ctx, q)
    return err
}

// Save inserts one record; rows are never updated
func (r *AnalysisRepository) Save(ctx context.Context, req *domain.Request) error {
    const q = `
INSERT INTO analysis_requests
  (task_id, created_at, question, files_processed, status)
VALUES ($1,$2,$3,$4,$5);
`
    files := req.FilesProcessed
    if files == nil {
        files = []string{}
    }
    raw, err := json.Marshal(files)
    if err != nil {
        return err
    }
    status := string(req.Status)
    if strings.TrimSpace(status) == "" {
        status = "-"
    }
    createdAt := req.Timestamp
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err = r.db.ExecContext(ctx, q, req.TaskID, createdAt.UTC(), req.Question, string(raw), status)
    return err
}

// Latest returns up to limit records ordered by created_at desc
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Request, error) {
    const q = `
SELECT task_id, created_at, question, files_processed::text, status
FROM analysis_requests
ORDER BY created_at DESC, task_id DESC
LIMIT $1;
`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*domain.Request{}
    for rows.Next() {
        var req domain.Request
        var raw string
        if err := rows.Scan(&req.TaskID, &req.Timestamp, &req.Question, &raw, &req.Status); err != nil {
            return nil, err
        }
        req.FilesProcessed = []string{}
        if err := json.Unmarshal([]byte(raw), &req.FilesProcessed); err != nil {
            return nil, err
        }
        out = append(out, &req)
    }
    return out, rows.Err()
}
