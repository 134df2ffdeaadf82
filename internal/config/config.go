// Package config loads quizzer settings from defaults, an optional YAML
// file and QUIZZER_* environment variables.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/scoring"
)

// Config holds all quizzer settings.
type Config struct {
	// DB is a SQLite path or a postgres:// URL. Empty selects the default
	// database location.
	DB string `yaml:"db"`

	// QuizzesDir is where imported quiz files live.
	QuizzesDir string `yaml:"quizzes_dir"`

	// ReportsDir is where HTML reports are written.
	ReportsDir string `yaml:"reports_dir"`

	Import ImportConfig `yaml:"import"`
	Run    RunConfig    `yaml:"run"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ImportConfig controls quiz generation.
type ImportConfig struct {
	MaxQuestions int `yaml:"max_questions"`

	// Variations is the number of quizzes per import. Zero picks a count
	// from the pool size.
	Variations int `yaml:"variations"`
}

// RunConfig controls grading.
type RunConfig struct {
	PassThreshold float64 `yaml:"pass_threshold"`

	// HistoryLimit caps stored attempts. Zero keeps everything.
	HistoryLimit int `yaml:"history_limit"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	TestMode    bool     `yaml:"test_mode"`
	TLSCert     string   `yaml:"tls_cert"`
	TLSKey      string   `yaml:"tls_key"`

	// AttemptTTL is how long an unfinished attempt may sit idle, e.g. "2h".
	AttemptTTL time.Duration `yaml:"attempt_ttl"`

	// MaxAttempts caps unfinished attempts held in memory.
	MaxAttempts int `yaml:"max_attempts"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a Config with the built-in defaults.
func Default() Config {
	return Config{
		QuizzesDir: "data/quizzes",
		ReportsDir: "data/reports",
		Import: ImportConfig{
			MaxQuestions: quiz.DefaultMaxQuestions,
			Variations:   1,
		},
		Run: RunConfig{
			PassThreshold: scoring.DefaultPassThreshold,
			HistoryLimit:  100,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:5000",
			CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			AttemptTTL:  2 * time.Hour,
			MaxAttempts: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults and then applies
// environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.parseYAML(data); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) parseYAML(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QUIZZER_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("QUIZZER_QUIZZES_DIR"); v != "" {
		c.QuizzesDir = v
	}
	if v := os.Getenv("QUIZZER_REPORTS_DIR"); v != "" {
		c.ReportsDir = v
	}
	if err := envInt("QUIZZER_MAX_QUESTIONS", &c.Import.MaxQuestions); err != nil {
		return err
	}
	if err := envInt("QUIZZER_VARIATIONS", &c.Import.Variations); err != nil {
		return err
	}
	if err := envFloat("QUIZZER_PASS_THRESHOLD", &c.Run.PassThreshold); err != nil {
		return err
	}
	if err := envInt("QUIZZER_HISTORY_LIMIT", &c.Run.HistoryLimit); err != nil {
		return err
	}
	if v := os.Getenv("QUIZZER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("QUIZZER_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("QUIZZER_TEST_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUIZZER_TEST_MODE: %w", err)
		}
		c.Server.TestMode = b
	}
	if v := os.Getenv("QUIZZER_ATTEMPT_TTL"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("QUIZZER_ATTEMPT_TTL: %w", err)
		}
		c.Server.AttemptTTL = d
	}
	if err := envInt("QUIZZER_MAX_ATTEMPTS", &c.Server.MaxAttempts); err != nil {
		return err
	}
	if v := os.Getenv("QUIZZER_TLS_CERT"); v != "" {
		c.Server.TLSCert = v
	}
	if v := os.Getenv("QUIZZER_TLS_KEY"); v != "" {
		c.Server.TLSKey = v
	}
	if v := os.Getenv("QUIZZER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QUIZZER_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("QUIZZER_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// Validate rejects settings the engine would refuse later.
func (c Config) Validate() error {
	if c.Import.MaxQuestions <= 0 {
		return &quiz.ConfigError{Field: "import.max_questions", Value: c.Import.MaxQuestions}
	}
	if c.Import.Variations < 0 {
		return &quiz.ConfigError{Field: "import.variations", Value: c.Import.Variations}
	}
	if c.Run.PassThreshold < 0 || c.Run.PassThreshold > 100 {
		return &quiz.ConfigError{Field: "run.pass_threshold", Value: c.Run.PassThreshold}
	}
	if c.Run.HistoryLimit < 0 {
		return &quiz.ConfigError{Field: "run.history_limit", Value: c.Run.HistoryLimit}
	}
	if c.Server.AttemptTTL <= 0 {
		return &quiz.ConfigError{Field: "server.attempt_ttl", Value: c.Server.AttemptTTL}
	}
	if c.Server.MaxAttempts <= 0 {
		return &quiz.ConfigError{Field: "server.max_attempts", Value: c.Server.MaxAttempts}
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return &quiz.ConfigError{Field: "server.tls_cert/tls_key", Value: "both or neither must be set"}
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
