package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizzer/internal/scoring"
)

const (
	tableAttempts = "attempts"
	tableFailures = "attempt_failures"
)

// AttemptRecord is a stored, finalized attempt.
type AttemptRecord struct {
	ID             string            `json:"id"`
	QuizID         string            `json:"quiz_id"`
	SourceName     string            `json:"source_file"`
	Total          int               `json:"total_questions"`
	Correct        int               `json:"correct_answers"`
	Score          float64           `json:"score_percentage"`
	Passed         bool              `json:"passed"`
	ElapsedSeconds float64           `json:"time_spent"`
	CompletedAt    time.Time         `json:"completed_at"`
	Failures       []scoring.Failure `json:"failures,omitempty"`
}

// Summary aggregates all stored attempts.
type Summary struct {
	Attempts     int     `json:"attempts"`
	Passed       int     `json:"passed"`
	AverageScore float64 `json:"average_score"`
}

// PassRate returns the share of passed attempts in percent.
func (s Summary) PassRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return 100 * float64(s.Passed) / float64(s.Attempts)
}

// AttemptRepo persists finalized attempt results.
type AttemptRepo interface {
	// SaveResult stores res with its failures and returns the new attempt ID.
	SaveResult(ctx context.Context, sourceName string, res scoring.Result) (string, error)

	// Recent returns up to limit attempts, newest first, without failures.
	Recent(ctx context.Context, limit int) ([]AttemptRecord, error)

	// Failures returns the failures of one attempt in presentation order.
	Failures(ctx context.Context, attemptID string) ([]scoring.Failure, error)

	// Summary aggregates every stored attempt.
	Summary(ctx context.Context) (Summary, error)

	// Prune deletes all but the keep most recent attempts.
	Prune(ctx context.Context, keep int) (int, error)

	// Reset deletes every attempt and returns how many were removed.
	Reset(ctx context.Context) (int64, error)
}

type attemptRepo struct {
	drv     *entsql.Driver
	dialect string
}

func (r *attemptRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *attemptRepo) SaveResult(ctx context.Context, sourceName string, res scoring.Result) (string, error) {
	id := uuid.NewString()
	b := r.builder()

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}

	q, args := b.Insert(tableAttempts).
		Columns("id", "quiz_id", "source_file", "total", "correct", "score", "passed", "elapsed_seconds", "completed_at").
		Values(id, res.QuizID, sourceName, res.Total, res.CorrectCount, res.ScorePercentage, res.Passed,
			res.ElapsedSeconds, res.CompletedAt.UnixMilli()).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert attempt: %w", err)
	}

	if len(res.Failures) > 0 {
		ins := b.Insert(tableFailures).
			Columns("attempt_id", "position", "question_id", "question_text", "submitted", "display_answer")
		for i, f := range res.Failures {
			ins.Values(id, i, f.QuestionID, f.QuestionText, f.Submitted, f.Display)
		}
		q, args := ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert failures: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit attempt: %w", err)
	}
	return id, nil
}

func (r *attemptRepo) Recent(ctx context.Context, limit int) ([]AttemptRecord, error) {
	b := r.builder()
	sel := b.Select("id", "quiz_id", "source_file", "total", "correct", "score", "passed", "elapsed_seconds", "completed_at").
		From(b.Table(tableAttempts)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var (
			rec       AttemptRecord
			completed int64
		)
		if err := rows.Scan(&rec.ID, &rec.QuizID, &rec.SourceName, &rec.Total, &rec.Correct,
			&rec.Score, &rec.Passed, &rec.ElapsedSeconds, &completed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.CompletedAt = time.UnixMilli(completed)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Failures(ctx context.Context, attemptID string) ([]scoring.Failure, error) {
	b := r.builder()
	q, args := b.Select("question_id", "question_text", "submitted", "display_answer").
		From(b.Table(tableFailures)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("position").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []scoring.Failure
	for rows.Next() {
		var f scoring.Failure
		if err := rows.Scan(&f.QuestionID, &f.QuestionText, &f.Submitted, &f.Display); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Summary(ctx context.Context) (Summary, error) {
	b := r.builder()
	q, args := b.Select(
		entsql.Count("*"),
		"COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0)",
		"COALESCE(AVG(score), 0)",
	).From(b.Table(tableAttempts)).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var s Summary
	if rows.Next() {
		if err := rows.Scan(&s.Attempts, &s.Passed, &s.AverageScore); err != nil {
			return Summary{}, fmt.Errorf("scan summary: %w", err)
		}
	}
	return s, rows.Err()
}

func (r *attemptRepo) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	recent, err := r.Recent(ctx, 0)
	if err != nil {
		return 0, err
	}
	if len(recent) <= keep {
		return 0, nil
	}

	ids := make([]any, 0, len(recent)-keep)
	for _, rec := range recent[keep:] {
		ids = append(ids, rec.ID)
	}
	n, err := r.deleteWhere(ctx, entsql.In("attempt_id", ids...), entsql.In("id", ids...))
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return int(n), nil
}

func (r *attemptRepo) Reset(ctx context.Context) (int64, error) {
	n, err := r.deleteWhere(ctx, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("reset attempts: %w", err)
	}
	return n, nil
}

// deleteWhere removes failures matching failurePred and attempts matching
// attemptPred in one transaction and returns the number of attempts
// removed. Nil predicates delete every row.
func (r *attemptRepo) deleteWhere(ctx context.Context, failurePred, attemptPred *entsql.Predicate) (int64, error) {
	b := r.builder()
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	delFailures := b.Delete(tableFailures)
	if failurePred != nil {
		delFailures.Where(failurePred)
	}
	delAttempts := b.Delete(tableAttempts)
	if attemptPred != nil {
		delAttempts.Where(attemptPred)
	}

	q, args := delFailures.Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		tx.Rollback()
		return 0, err
	}
	q, args = delAttempts.Query()
	var res sql.Result
	if err := tx.Exec(ctx, q, args, &res); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
