package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

func TestValidateURL(t *testing.T) {
	for _, ok := range []string{"https://en.wikipedia.org/wiki/List_of_highest-grossing_films", "http://example.com/t"} {
		assert.NoError(t, ValidateURL(ok), ok)
	}
	for _, bad := range []string{
		"", "ftp://example.com", "file:///etc/passwd", "http://localhost:8080",
		"http://127.0.0.1/", "http://[::1]/", "http://10.0.0.5/", "http://192.168.1.1/",
		"http://172.20.0.1/", "http://169.254.169.254/latest/meta-data", "http://0.0.0.0/",
	} {
		assert.Error(t, ValidateURL(bad), bad)
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 100, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 7, ValidateLimit(7))
}

func TestValidateQuestion(t *testing.T) {
	assert.NoError(t, ValidateQuestion("what is 2+2"))
	assert.ErrorIs(t, ValidateQuestion("  \n"), analysis.ErrMissingQuestion)
	assert.ErrorIs(t, ValidateQuestion("\xff"), analysis.ErrInvalidInput)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "a\tb", SanitizeString(" a\x00\tb\x07 "))
}

type checkFunc func(context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{
		"db":   checkFunc(func(context.Context) error { return nil }),
		"blob": checkFunc(func(context.Context) error { return errors.New("down") }),
	})(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["db"].Status)
	assert.Equal(t, "down", body.Checks["blob"].Message)
}

func TestDatabaseHealthCheckerWithoutDB(t *testing.T) {
	assert.Error(t, (&DatabaseHealthChecker{}).Check(t.Context()))
}

func TestServiceHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceHandler("data-analyst-agent")(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.JSONEq(t, `{"status":"healthy","service":"data-analyst-agent"}`, rec.Body.String())
}

func TestLoggingAndMetricsMiddlewareCaptureStatus(t *testing.T) {
	h := LoggingMiddleware(MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("x"))
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
