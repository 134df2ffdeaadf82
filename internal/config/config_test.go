package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/quizzer/internal/quiz"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quizzer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Import.MaxQuestions != 50 {
		t.Errorf("MaxQuestions = %d, want 50", cfg.Import.MaxQuestions)
	}
	if cfg.Import.Variations != 1 {
		t.Errorf("Variations = %d, want 1", cfg.Import.Variations)
	}
	if cfg.Run.PassThreshold != 80 {
		t.Errorf("PassThreshold = %v, want 80", cfg.Run.PassThreshold)
	}
	if cfg.Server.Addr != "127.0.0.1:5000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
quizzes_dir: /srv/quizzes
import:
  max_questions: 25
run:
  pass_threshold: 70
server:
  cors_origins: ["https://quiz.example.org"]
  attempt_ttl: 30m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QuizzesDir != "/srv/quizzes" || cfg.Import.MaxQuestions != 25 || cfg.Run.PassThreshold != 70 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Import.Variations != 1 {
		t.Errorf("unset field lost its default: Variations = %d", cfg.Import.Variations)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.AttemptTTL != 30*time.Minute || cfg.Server.MaxAttempts != 1000 {
		t.Errorf("attempt limits = %v, %d", cfg.Server.AttemptTTL, cfg.Server.MaxAttempts)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "import:\n  max_questions: 25\n")
	t.Setenv("QUIZZER_MAX_QUESTIONS", "10")
	t.Setenv("QUIZZER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("QUIZZER_TEST_MODE", "true")
	t.Setenv("QUIZZER_MAX_ATTEMPTS", "50")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Import.MaxQuestions != 10 {
		t.Errorf("MaxQuestions = %d, want 10", cfg.Import.MaxQuestions)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.TestMode {
		t.Error("TestMode not set from env")
	}
	if cfg.Server.MaxAttempts != 50 {
		t.Errorf("MaxAttempts = %d, want 50", cfg.Server.MaxAttempts)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "bogus: 1\n")); err == nil {
			t.Error("expected error for unknown field")
		}
	})
	t.Run("multiple documents", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "db: a\n---\ndb: b\n")); err == nil {
			t.Error("expected error for multiple documents")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("err = %v, want ErrNotExist", err)
		}
	})
	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("QUIZZER_PASS_THRESHOLD", "high")
		if _, err := FromEnv(); err == nil {
			t.Error("expected error for non-numeric threshold")
		}
	})
	t.Run("empty file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		if err != nil || cfg.Import.MaxQuestions != 50 {
			t.Errorf("Load(empty) = %+v, %v", cfg, err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max", func(c *Config) { c.Import.MaxQuestions = 0 }},
		{"negative variations", func(c *Config) { c.Import.Variations = -1 }},
		{"threshold above 100", func(c *Config) { c.Run.PassThreshold = 101 }},
		{"threshold below 0", func(c *Config) { c.Run.PassThreshold = -5 }},
		{"cert without key", func(c *Config) { c.Server.TLSCert = "cert.pem" }},
		{"zero attempt ttl", func(c *Config) { c.Server.AttemptTTL = 0 }},
		{"zero max attempts", func(c *Config) { c.Server.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, quiz.ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestValidate_ZeroThresholdKept(t *testing.T) {
	path := writeConfig(t, "run:\n  pass_threshold: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Run.PassThreshold != 0 {
		t.Errorf("PassThreshold = %v, want 0", cfg.Run.PassThreshold)
	}
}
