package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appanalysis "github.com/bryanwahyu/automaton-analyst/internal/application/analysis"
	domai "github.com/bryanwahyu/automaton-analyst/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/middleware"
)

// ServiceName is reported by GET /api/health.
const ServiceName = "data-analyst-agent"

// Options untuk router; nilai nol pakai default.
type Options struct {
	MaxMemory int64 // multipart parts kept in memory
	MaxBytes  int64 // whole request body
	Checkers  map[string]middleware.HealthChecker
}

type Router struct {
	svc  *appanalysis.Service
	opts Options
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = 32 << 20
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 100 << 20
	}
	r := &Router{svc: svc, opts: opts}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleAnalyze))
		rt.Get("/health", middleware.ServiceHandler(ServiceName))
		rt.Get("/health/ready", middleware.HealthHandler(opts.Checkers))
		rt.Get("/tasks", r.wrap(r.handleTasks))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			case errors.Is(err, domain.ErrMissingQuestion):
				writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			case errors.Is(err, domain.ErrInvalidInput):
				writeDetail(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, sql.ErrNoRows):
				writeDetail(w, http.StatusNotFound, "not found")
			default:
				slog.Error("request failed", "path", req.URL.Path, "err", err)
				writeDetail(w, http.StatusInternalServerError, err.Error())
			}
		}
	}
}

// POST /api/
// multipart: questions (wajib), files (boleh berulang)
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxBytes)
	if err := req.ParseMultipartForm(r.opts.MaxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return domain.ErrMissingQuestion
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	defer func() { _ = req.MultipartForm.RemoveAll() }()

	question, err := readQuestion(req.MultipartForm)
	if err != nil {
		return err
	}

	var uploads []appanalysis.Upload
	for _, fh := range req.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		defer f.Close()
		uploads = append(uploads, appanalysis.Upload{
			Filename: middleware.SanitizeString(fh.Filename),
			Content:  f,
		})
	}

	res, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		Question: question,
		Files:    uploads,
	})
	if err != nil && res.TaskID == "" {
		return err
	}
	return writeJSON(w, envelopeStatus(err), res)
}

// GET /api/tasks?limit=
func (r *Router) handleTasks(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Recent(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func readQuestion(form *multipart.Form) (string, error) {
	headers := form.File["questions"]
	if len(headers) == 0 {
		// teks biasa di field form juga diterima
		if vals := form.Value["questions"]; len(vals) > 0 {
			return vals[0], middleware.ValidateQuestion(vals[0])
		}
		return "", domain.ErrMissingQuestion
	}
	f, err := headers[0].Open()
	if err != nil {
		return "", fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read questions file: %w", err)
	}
	q := string(b)
	return q, middleware.ValidateQuestion(q)
}

// envelopeStatus picks the HTTP status for a recorded outcome.
// Execution errors are a normal outcome for the client and stay 200.
func envelopeStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, domain.ErrExecution):
		return http.StatusOK
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeJSON encodes before touching the response so an encoding error
// can still be reported with a proper status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	_ = writeJSON(w, status, map[string]string{"detail": detail})
}
