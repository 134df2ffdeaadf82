// Package quizfile stores generated quizzes as JSON documents on disk.
package quizfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/quizzer/internal/answer"
	"github.com/abhisek/quizzer/internal/quiz"
)

// FormatVersion is written into every saved quiz file.
const FormatVersion = "1.0.0"

// Ext is the quiz file extension.
const Ext = ".json"

var (
	// ErrInvalidFile is returned for documents that fail schema validation.
	ErrInvalidFile = errors.New("invalid quiz file")

	// ErrUnsupportedVersion is returned for an incompatible format_version.
	ErrUnsupportedVersion = errors.New("unsupported quiz file version")
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://quizfile.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// createdLayouts are accepted for created_at. Older files carry a local
// timestamp without zone.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

type document struct {
	FormatVersion string `json:"format_version,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	quiz.Quiz
}

// FileName returns the file name a quiz is saved under.
func FileName(quizID string) string {
	return quizID + Ext
}

// Save writes qz to dir, creating dir if needed, and returns the path.
func Save(dir string, qz *quiz.Quiz) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create quiz directory: %w", err)
	}
	data, err := json.MarshalIndent(document{
		FormatVersion: FormatVersion,
		CreatedAt:     qz.CreatedAt.Format(time.RFC3339),
		Quiz:          *qz,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal quiz: %w", err)
	}
	path := filepath.Join(dir, FileName(qz.ID))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write quiz: %w", err)
	}
	return path, nil
}

// Load reads and validates the quiz file at path.
func Load(path string) (*quiz.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quiz: %w", err)
	}
	qz, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return qz, nil
}

// Decode parses and validates a quiz document.
func Decode(data []byte) (*quiz.Quiz, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	schema, err := getSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := checkVersion(doc.FormatVersion); err != nil {
		return nil, err
	}
	if doc.CreatedAt != "" {
		created, err := parseCreated(doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		doc.Quiz.CreatedAt = created
	}
	canonicalize(doc.Quiz.Questions)
	if err := doc.Quiz.Validate(0); err != nil {
		return nil, err
	}
	return &doc.Quiz, nil
}

// canonicalize re-normalizes stored answers so hand-edited or older files
// with mixed case or unsorted tokens still grade correctly. An answer with
// no usable tokens falls back to original_answer.
func canonicalize(qs []quiz.Question) {
	for i := range qs {
		q := &qs[i]
		q.Canonical = answer.Normalize(answer.Join(q.Canonical))
		if len(q.Canonical) == 0 {
			q.Canonical = answer.Normalize(q.Display)
		}
		if q.Display == "" {
			q.Display = answer.Join(q.Canonical)
		}
	}
}

// checkVersion accepts any 1.x format. Files written before versioning
// carry no format_version and are treated as 1.0.0.
func checkVersion(v string) error {
	if v == "" {
		v = FormatVersion
	}
	sv := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(sv) {
		return fmt.Errorf("%w: %q is not a version", ErrUnsupportedVersion, v)
	}
	if semver.Major(sv) != semver.Major("v"+FormatVersion) {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return nil
}

func parseCreated(v string) (time.Time, error) {
	for _, layout := range createdLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("created_at %q is not a timestamp", v)
}

func getSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
