package quizfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// testFolderMarkers identify folders holding sample data. They are hidden
// from listings unless test mode is on.
var testFolderMarkers = []string{"sample", "test", "demo", "example"}

// ErrOutsideRoot is returned when a requested path escapes the quiz root.
var ErrOutsideRoot = errors.New("path outside quiz directory")

// Summary describes a quiz file without its questions.
type Summary struct {
	Path       string    `json:"path"`
	Folder     string    `json:"folder"`
	ID         string    `json:"quiz_id"`
	SourceName string    `json:"source_file"`
	CreatedAt  time.Time `json:"created_at"`
	Questions  int       `json:"question_count"`
}

// ListOptions controls List.
type ListOptions struct {
	// IncludeTestData lists folders named like sample/test/demo/example.
	IncludeTestData bool

	// OnInvalid is called for files that fail to load. They are skipped.
	OnInvalid func(path string, err error)
}

// List walks root for quiz files and returns them newest first. Paths in
// the result are relative to root.
func List(root string, opts ListOptions) ([]Summary, error) {
	var out []Summary
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != root && !opts.IncludeTestData && IsTestFolder(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != Ext || d.Name() == ImportRecordName {
			return nil
		}

		qz, err := Load(path)
		if err != nil {
			if opts.OnInvalid != nil {
				opts.OnInvalid(path, err)
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, Summary{
			Path:       filepath.ToSlash(rel),
			Folder:     filepath.ToSlash(filepath.Dir(rel)),
			ID:         qz.ID,
			SourceName: qz.SourceName,
			CreatedAt:  qz.CreatedAt,
			Questions:  len(qz.Questions),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	slices.SortStableFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}

// IsTestFolder reports whether a folder name marks sample data.
func IsTestFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range testFolderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Resolve joins a slash-separated relative path onto root and rejects
// results that leave root.
func Resolve(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	full := filepath.Join(absRoot, filepath.FromSlash(rel))
	inside, err := filepath.Rel(absRoot, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return full, nil
}
