package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// AnalysisRepository persists request records in SQLite.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS analysis_requests (
		task_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		question TEXT NOT NULL,
		files_processed TEXT NOT NULL,
		status TEXT NOT NULL
	);`)
	return err
}

// Save inserts a new record.
func (r *AnalysisRepository) Save(ctx context.Context, req *domain.Request) error {
	files := req.FilesProcessed
	if files == nil {
		files = []string{}
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return err
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO analysis_requests
		(task_id, created_at, question, files_processed, status)
		VALUES (?, ?, ?, ?, ?)`,
		string(req.TaskID),
		ts.UTC().Format(timeLayout),
		req.Question,
		string(raw),
		string(req.Status),
	)
	return err
}

// Latest returns the newest records first.
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Request, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task_id, created_at, question, files_processed, status
		FROM analysis_requests
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Request{}
	for rows.Next() {
		var req domain.Request
		var ts, raw string
		if err := rows.Scan(&req.TaskID, &ts, &req.Question, &raw, &req.Status); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, ts); err == nil {
			req.Timestamp = t
		}
		req.FilesProcessed = []string{}
		if err := json.Unmarshal([]byte(raw), &req.FilesProcessed); err != nil {
			return nil, err
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}
