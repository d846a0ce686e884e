package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Sandbox.Timeout)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: mysql
  host: db
  port: 3306
  user: u
  password: p
  name: analyst
llm:
  provider: openai
  timeout: 45s
sandbox:
  timeout: 5s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "u:p@tcp(db:3306)/analyst?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DSN())
	assert.Equal(t, 200, cfg.Sandbox.CallStackSize)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":   "postgres://x",
		"DB_DRIVER":      "Postgres",
		"DB_NAME":        "other",
		"GEMINI_API_KEY": "g-key",
		"PORT":           "7000",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://x", cfg.DSN())
	assert.Equal(t, "other", cfg.Database.Name)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Empty(t, cfg.Validate())
}

func TestValidateWarnsOnMissingKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = ProviderOpenAI
	cfg.Database.Driver = "oracle"
	assert.Len(t, cfg.Validate(), 2)
}

func TestLLMEndpointDefaults(t *testing.T) {
	cfg := Default()
	base, model := cfg.LLMEndpoint()
	assert.Equal(t, geminiBaseURL, base)
	assert.Equal(t, "gemini-2.0-flash", model)

	cfg.LLM.Provider = ProviderOpenAI
	base, model = cfg.LLMEndpoint()
	assert.Empty(t, base)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestDSNDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "file:test_database.db", cfg.DSN())

	cfg.Database.Driver = DriverPostgres
	cfg.Database.Host, cfg.Database.Port = "pg", 5432
	cfg.Database.User, cfg.Database.Password, cfg.Database.Name = "u", "p@ss", "analyst"
	assert.Equal(t, "postgres://u:p%40ss@pg:5432/analyst?sslmode=disable", cfg.DSN())
}
