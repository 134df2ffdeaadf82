package quiz

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizzer/internal/answer"
)

// DefaultMaxQuestions is the default upper bound on questions per quiz.
const DefaultMaxQuestions = 50

// Pair is one raw question/answer row from a source pool.
type Pair struct {
	Text   string
	Answer string
}

// Question is a single immutable quiz question.
type Question struct {
	ID        int      `json:"id"`
	Text      string   `json:"question"`
	Canonical []string `json:"answer"`
	Display   string   `json:"original_answer"`
}

// Quiz is an ordered, already shuffled set of questions.
type Quiz struct {
	ID         string     `json:"quiz_id"`
	CreatedAt  time.Time  `json:"created_at"`
	SourceName string     `json:"source_file"`
	Questions  []Question `json:"questions"`
}

// NewQuestion normalizes a pool pair into a Question with the given ID.
// The returned error is a QuestionError when the pair is unusable.
func NewQuestion(index int, p Pair) (Question, error) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return Question{}, QuestionError{Index: index, Reason: "empty question text"}
	}
	canonical := answer.Normalize(p.Answer)
	if len(canonical) == 0 {
		return Question{}, QuestionError{Index: index, Reason: "empty answer"}
	}
	return Question{
		ID:        index + 1,
		Text:      text,
		Canonical: canonical,
		Display:   answer.Display(p.Answer),
	}, nil
}

// Validate checks a single question loaded from outside the partitioner.
func (q Question) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("%w: question id %d is not positive", ErrInvalidQuestionData, q.ID)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %d has empty text", ErrInvalidQuestionData, q.ID)
	}
	if len(q.Canonical) == 0 {
		return fmt.Errorf("%w: question %d has empty answer", ErrInvalidQuestionData, q.ID)
	}
	return nil
}

// Validate checks quiz-level invariants: at least one question, no more than
// maxQuestions (ignored when <= 0) and unique question IDs.
func (qz *Quiz) Validate(maxQuestions int) error {
	if qz.ID == "" {
		return fmt.Errorf("%w: quiz id is empty", ErrInvalidQuestionData)
	}
	if len(qz.Questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", ErrInvalidQuestionData, qz.ID)
	}
	if maxQuestions > 0 && len(qz.Questions) > maxQuestions {
		return fmt.Errorf("%w: quiz %s has %d questions, max %d",
			ErrInvalidQuestionData, qz.ID, len(qz.Questions), maxQuestions)
	}
	seen := make(map[int]bool, len(qz.Questions))
	for _, q := range qz.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %d in quiz %s", ErrInvalidQuestionData, q.ID, qz.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Question returns the question with the given ID.
func (qz *Quiz) Question(id int) (Question, bool) {
	for _, q := range qz.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
