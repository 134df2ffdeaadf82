package quizfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Confirmer decides whether the listed files may be deleted.
type Confirmer interface {
	Confirm(existing []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(existing []string) (bool, error)

func (f ConfirmFunc) Confirm(existing []string) (bool, error) { return f(existing) }

// Always answers every confirmation with the same decision.
type Always bool

func (a Always) Confirm([]string) (bool, error) { return bool(a), nil }

// Cleaner removes quiz files left in an output folder by a previous import.
type Cleaner struct {
	Dir     string
	Confirm Confirmer
}

// Existing lists quiz files directly inside Dir, sorted by name.
func (c *Cleaner) Existing() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list existing quizzes: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext || e.Name() == ImportRecordName {
			continue
		}
		files = append(files, filepath.Join(c.Dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// Clean lists existing files, asks for confirmation and deletes them when
// confirmed. It returns the deleted paths. Files that fail to delete are
// reported together in the returned error.
func (c *Cleaner) Clean() ([]string, error) {
	files, err := c.Existing()
	if err != nil || len(files) == 0 {
		return nil, err
	}
	ok, err := c.Confirm.Confirm(files)
	if err != nil {
		return nil, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var deleted []string
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, f)
	}
	return deleted, errors.Join(errs...)
}
