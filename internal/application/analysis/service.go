package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-analyst/internal/application"
	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/workspace"
)

// Metrics receives pipeline timings; nil disables them.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	ObserveAnalysis(status string)
}

// Service implements use-case analisis: ingest -> generate -> execute -> log.
// Setiap request berjalan berurutan; Service aman dipakai bersamaan.
type Service struct {
	Repo      domain.Repository
	Ingestor  domain.Ingestor
	Generator domain.CodeGenerator
	Executor  domain.Executor
	Artifacts domain.ArtifactStore
	Clock     application.Clock
	Metrics   Metrics
	Logger    *slog.Logger

	// TempDir is the parent of per-request workspaces ("" = os.TempDir).
	TempDir string
	// Reserved names binding tidak boleh pakai (global sandbox).
	Reserved []string
}

//
// ==== USE CASES ====
//

// Upload satu file dari form multipart
type Upload struct {
	Filename string
	Content  io.Reader
}

// Command untuk analisis
type AnalyzeCommand struct {
	Question string
	Files    []Upload
}

// Analyze runs the whole pipeline for one request.
//
// The returned error is nil on success. When it is non-nil and the result has
// a task id, the failure was recorded in the request log and the result is the
// envelope to send back. A result without task id (invalid input) was not
// recorded.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (domain.Result, error) {
	start := time.Now()
	req := &domain.Request{
		TaskID:         domain.TaskID(uuid.New().String()),
		Timestamp:      s.now(),
		Question:       cmd.Question,
		FilesProcessed: []string{},
		Status:         domain.StatusProcessing,
	}
	log := s.logger().With("task_id", req.TaskID)

	ws, err := workspace.New(s.TempDir)
	if err != nil {
		return s.finish(ctx, log, req, start, nil, fmt.Errorf("create workspace: %w", err))
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			log.Warn("failed to remove workspace", "dir", ws.Dir, "err", err)
		}
	}()

	// 1. ingest
	files := ingest.NewContext(s.Reserved)
	for _, up := range cmd.Files {
		name := workspace.SafeName(up.Filename)
		path, err := ws.Save(name, up.Content)
		if err != nil {
			return s.finish(ctx, log, req, start, nil, fmt.Errorf("save upload %s: %w", name, err))
		}
		item, ok, err := s.Ingestor.Ingest(ctx, path, name)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				log.Warn("rejecting upload", "filename", name, "err", err)
				return domain.Result{}, err
			}
			return s.finish(ctx, log, req, start, nil, fmt.Errorf("ingest %s: %w", name, err))
		}
		if !ok {
			files.Skip(name)
			continue
		}
		b := files.Add(name, item)
		log.Info("file ingested", "filename", name, "binding", b.Name, "kind", b.Kind)
	}
	req.FilesProcessed = files.Summary.Files

	// 2. generate
	t := time.Now()
	code, err := s.Generator.Generate(ctx, cmd.Question, files.Summary)
	s.observe("generate", t)
	if err != nil {
		log.Error("error generating analysis code", "err", err)
		return s.finish(ctx, log, req, start, nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err))
	}
	s.archive(ctx, log, ws, req.TaskID, code)

	// 3. execute
	t = time.Now()
	value, err := s.Executor.Execute(ctx, code, files.Bindings())
	s.observe("execute", t)
	if err != nil {
		log.Error("error executing analysis code", "err", err)
		return s.finish(ctx, log, req, start, nil, fmt.Errorf("%w: %w", domain.ErrExecution, err))
	}
	return s.finish(ctx, log, req, start, value, nil)
}

// Recent returns the newest request records.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Request, error) {
	return s.Repo.Latest(ctx, limit)
}

// finish menetapkan status akhir, menyimpan satu record log, lalu membangun envelope.
func (s *Service) finish(ctx context.Context, log *slog.Logger, req *domain.Request, start time.Time, value any, cause error) (domain.Result, error) {
	res := domain.Result{TaskID: req.TaskID}
	if cause == nil {
		req.Status = domain.StatusCompleted
		res.Result = value
	} else {
		req.Status = domain.StatusError
		msg := cause.Error()
		res.Error = &msg
	}
	res.Status = req.Status

	// gagal simpan log tidak mengubah envelope
	if err := s.Repo.Save(context.WithoutCancel(ctx), req); err != nil {
		log.Error("failed to store request log", "err", err)
	}
	res.ExecutionTime = time.Since(start).Seconds()

	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(string(res.Status))
	}
	log.Info("analysis finished", "status", res.Status, "execution_time", res.ExecutionTime)
	return res, cause
}

// archive menyimpan script ke artifact store kalau dikonfigurasi (best-effort).
func (s *Service) archive(ctx context.Context, log *slog.Logger, ws *workspace.Workspace, id domain.TaskID, code string) {
	if s.Artifacts == nil {
		return
	}
	path, err := ws.WriteFile("analysis.lua", []byte(code))
	if err != nil {
		log.Warn("failed to write script for archive", "err", err)
		return
	}
	url, err := s.Artifacts.UploadAndCleanup(ctx, path, string(id)+"/analysis.lua")
	if err != nil {
		log.Warn("failed to archive script", "err", err)
		return
	}
	log.Info("script archived", "url", url)
}

func (s *Service) observe(stage string, since time.Time) {
	if s.Metrics != nil {
		s.Metrics.ObserveStage(stage, time.Since(since))
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
