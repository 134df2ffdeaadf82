// Package csvsource reads question/answer pools from CSV files.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/abhisek/quizzer/internal/quiz"
)

// ErrTooFewColumns is returned when a row has fewer than two columns.
var ErrTooFewColumns = errors.New("too few columns")

// RowError locates a malformed row.
type RowError struct {
	Row     int
	Columns int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d has %d column(s), expected at least 2 (question,answer)", e.Row, e.Columns)
}

func (e *RowError) Unwrap() error { return ErrTooFewColumns }

// Encoding names reported in Pool.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

// Pool is the content of one CSV source.
type Pool struct {
	// Pairs are the usable rows in file order.
	Pairs []quiz.Pair

	// SkippedRows lists line numbers of rows with an empty question or answer.
	SkippedRows []int

	// HeaderSkipped is true when the first row was detected as a header.
	HeaderSkipped bool

	// Encoding is the detected text encoding.
	Encoding string
}

// ReadFile reads a pool from the CSV file at path.
func ReadFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	pool, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pool, nil
}

// Read reads a pool from r.
func Read(r io.Reader) (*Pool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw CSV bytes. Only the first two columns of each row are
// used; extra columns are ignored.
func Parse(data []byte) (*Pool, error) {
	text, enc, err := decode(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	pool := &Pool{Encoding: enc}
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		if len(record) < 2 {
			return nil, &RowError{Row: line, Columns: len(record)}
		}

		question := strings.TrimSpace(record[0])
		ans := strings.TrimSpace(record[1])
		if first {
			first = false
			if isHeader(question, ans) {
				pool.HeaderSkipped = true
				continue
			}
		}
		if question == "" || ans == "" {
			pool.SkippedRows = append(pool.SkippedRows, line)
			continue
		}
		pool.Pairs = append(pool.Pairs, quiz.Pair{Text: question, Answer: ans})
	}
	return pool, nil
}

func isHeader(question, ans string) bool {
	return strings.Contains(strings.ToLower(question), "question") ||
		strings.Contains(strings.ToLower(ans), "answer")
}

// decode converts data to UTF-8. Valid UTF-8 (with or without BOM) is used
// as is. Otherwise the bytes are Windows-1252 unless they contain code
// points that Windows-1252 leaves undefined, in which case ISO-8859-1.
func decode(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		out, err := decodeWith(unicode.UTF8BOM, data)
		return out, EncodingUTF8, err
	}
	if hasUndefined1252(data) {
		out, err := decodeWith(charmap.ISO8859_1, data)
		return out, EncodingISO88591, err
	}
	out, err := decodeWith(charmap.Windows1252, data)
	return out, EncodingWindows1252, err
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode csv: %w", err)
	}
	return string(out), nil
}

// hasUndefined1252 reports whether data holds a byte with no Windows-1252
// mapping.
func hasUndefined1252(data []byte) bool {
	for _, b := range data {
		switch b {
		case 0x81, 0x8d, 0x8f, 0x90, 0x9d:
			return true
		}
	}
	return false
}
