package quizfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ImportRecordName is the metadata file describing the most recent import.
const ImportRecordName = "last_import.json"

// ImportRecord summarizes one import run.
type ImportRecord struct {
	LastImport     time.Time `json:"last_import"`
	SourceCSV      string    `json:"source_csv"`
	CSVBasename    string    `json:"csv_basename"`
	OutputDir      string    `json:"output_dir"`
	QuizFiles      []string  `json:"quiz_files"`
	NumQuizzes     int       `json:"num_quizzes"`
	TotalQuestions int       `json:"total_questions"`
	SkippedRows    int       `json:"skipped_rows"`
}

// SaveImportRecord writes rec to root/last_import.json.
func SaveImportRecord(root string, rec *ImportRecord) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create quiz directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal import record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ImportRecordName), data, 0o644); err != nil {
		return fmt.Errorf("write import record: %w", err)
	}
	return nil
}

// LoadImportRecord reads root/last_import.json.
func LoadImportRecord(root string) (*ImportRecord, error) {
	data, err := os.ReadFile(filepath.Join(root, ImportRecordName))
	if err != nil {
		return nil, fmt.Errorf("read import record: %w", err)
	}
	var rec ImportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse import record: %w", err)
	}
	return &rec, nil
}
