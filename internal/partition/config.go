package partition

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/quizzer/internal/quiz"
)

// DefaultVariations is the number of quizzes generated when the caller does
// not ask for a specific count.
const DefaultVariations = 1

// Config controls a single Partition call.
type Config struct {
	// Variations is the number of quizzes to generate. Must be positive.
	Variations int

	// MaxPerQuiz bounds the number of questions in each quiz. Must be positive.
	MaxPerQuiz int

	// SourceName identifies the pool, typically the CSV file name.
	SourceName string

	// Prefix overrides the quiz ID prefix. Defaults to the SourceName stem,
	// or "quiz" when there is no source name.
	Prefix string

	// Seed makes shuffling reproducible. Zero seeds from the clock.
	Seed uint64

	// Now supplies the shared timestamp. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with the default bounds.
func DefaultConfig() Config {
	return Config{
		Variations: DefaultVariations,
		MaxPerQuiz: quiz.DefaultMaxQuestions,
	}
}

func (c Config) validate() error {
	if c.Variations <= 0 {
		return &quiz.ConfigError{Field: "variation_count", Value: c.Variations}
	}
	if c.MaxPerQuiz <= 0 {
		return &quiz.ConfigError{Field: "max_per_quiz", Value: c.MaxPerQuiz}
	}
	return nil
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Config) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	stem := strings.TrimSuffix(filepath.Base(c.SourceName), filepath.Ext(c.SourceName))
	stem = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(stem))
	if stem == "" || stem == "." {
		return "quiz"
	}
	return stem
}
