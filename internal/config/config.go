package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	LLM struct {
		Provider     string        `yaml:"provider"`
		Model        string        `yaml:"model"`
		BaseURL      string        `yaml:"baseURL"`
		OpenAIAPIKey string        `yaml:"openaiAPIKey"`
		GeminiAPIKey string        `yaml:"geminiAPIKey"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxTokens    int           `yaml:"maxTokens"`
	} `yaml:"llm"`

	Sandbox struct {
		Timeout         time.Duration `yaml:"timeout"`
		CallStackSize   int           `yaml:"callStackSize"`
		RegistryMaxSize int           `yaml:"registryMaxSize"`
		ScrapeTimeout   time.Duration `yaml:"scrapeTimeout"`
	} `yaml:"sandbox"`

	Upload struct {
		TempDir   string `yaml:"tempDir"`
		MaxMemory int64  `yaml:"maxMemory"`
		MaxBytes  int64  `yaml:"maxBytes"`
	} `yaml:"upload"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8001
	c.Server.ReadTimeout = 60 * time.Second
	c.Server.WriteTimeout = 3 * time.Minute
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Database.Driver = DriverSQLite
	c.Database.Name = "test_database"
	c.LLM.Provider = ProviderGemini
	c.LLM.Timeout = 60 * time.Second
	c.LLM.MaxTokens = 2048
	c.Sandbox.Timeout = 30 * time.Second
	c.Sandbox.CallStackSize = 200
	c.Sandbox.RegistryMaxSize = 256 * 1024
	c.Sandbox.ScrapeTimeout = 15 * time.Second
	c.Upload.MaxMemory = 32 << 20
	c.Upload.MaxBytes = 100 << 20
	c.Minio.BucketName = "analysis-scripts"
	c.Log.Level = "info"
	return &c
}

// Load baca file config.yaml (boleh tidak ada), lalu override dari environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("DATABASE_URL", &c.Database.DSN)
	set("DB_NAME", &c.Database.Name)
	set("DB_DRIVER", &c.Database.Driver)
	set("OPENAI_API_KEY", &c.LLM.OpenAIAPIKey)
	set("GEMINI_API_KEY", &c.LLM.GeminiAPIKey)
	set("LLM_PROVIDER", &c.LLM.Provider)
	set("LLM_MODEL", &c.LLM.Model)
	set("LLM_BASE_URL", &c.LLM.BaseURL)
	if v, ok := lookup("PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
}

// Validate returns problems that should be logged; startup continues regardless.
func (c *Config) Validate() []string {
	var problems []string
	if c.APIKey() == "" {
		problems = append(problems, fmt.Sprintf("no API key configured for llm provider %q", c.LLM.Provider))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		problems = append(problems, fmt.Sprintf("unknown database driver %q", c.Database.Driver))
	}
	return problems
}

// APIKey picks the credential of the configured provider.
func (c *Config) APIKey() string {
	if c.LLM.Provider == ProviderGemini {
		return c.LLM.GeminiAPIKey
	}
	return c.LLM.OpenAIAPIKey
}

// LLMEndpoint returns base URL and model, filling provider defaults.
func (c *Config) LLMEndpoint() (baseURL, model string) {
	baseURL, model = c.LLM.BaseURL, c.LLM.Model
	if c.LLM.Provider == ProviderGemini {
		if baseURL == "" {
			baseURL = geminiBaseURL
		}
		if model == "" {
			model = "gemini-2.0-flash"
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return baseURL, model
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	switch c.Database.Driver {
	case DriverMySQL:
		return c.MySQLDSN()
	case DriverPostgres:
		return c.PostgresDSN()
	}
	return "file:" + c.Database.Name + ".db"
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres (URL form, lib/pq)
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
