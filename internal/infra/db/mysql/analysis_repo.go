package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Migrate bikin tabel kalau belum ada
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_requests (
  task_id         VARCHAR(36)  NOT NULL PRIMARY KEY,
  created_at      DATETIME(6)  NOT NULL,
  question        MEDIUMTEXT   NOT NULL,
  files_processed TEXT         NOT NULL,
  status          VARCHAR(16)  NOT NULL,
  INDEX idx_analysis_requests_created (created_at)
);
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save insert satu record; log ini append-only
func (r *AnalysisRepository) Save(ctx context.Context, req *domain.Request) error {
	const q = `
INSERT INTO analysis_requests (task_id, created_at, question, files_processed, status)
VALUES (?,?,?,?,?);
`
	files, err := encodeFiles(req.FilesProcessed)
	if err != nil {
		return err
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q, req.TaskID, ts.UTC(), req.Question, files, stringOrDash(string(req.Status)))
	return err
}

// Latest requests, terbaru duluan
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Request, error) {
	const q = `
SELECT task_id, created_at, question, files_processed, status
FROM analysis_requests
ORDER BY created_at DESC, task_id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Request{}
	for rows.Next() {
		var req domain.Request
		var files string
		if err := rows.Scan(&req.TaskID, &req.Timestamp, &req.Question, &files, &req.Status); err != nil {
			return nil, err
		}
		if req.FilesProcessed, err = decodeFiles(files); err != nil {
			return nil, err
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}
