// Package partition turns a flat question pool into bounded-size quiz
// variations with even coverage of the pool.
package partition

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/quizzer/internal/quiz"
)

// idTimeLayout is the timestamp portion of generated quiz IDs.
const idTimeLayout = "20060102_150405"

// Result is the outcome of a Partition call.
type Result struct {
	// Quizzes holds one quiz per requested variation, in variation order.
	Quizzes []quiz.Quiz

	// Skipped lists pool entries that could not become questions.
	Skipped []quiz.QuestionError

	// PoolSize is the number of usable questions after filtering.
	PoolSize int

	// Usage counts how many quizzes each question ID appears in.
	Usage map[int]int
}

// Partition normalizes pairs into questions and produces cfg.Variations
// quizzes of at most cfg.MaxPerQuiz questions each.
//
// When the pool fits in a single quiz every variation receives the whole
// pool in its own random order. Otherwise questions are drawn from a shared
// shuffled queue that is replenished when exhausted, so usage counts across
// variations never differ by more than one.
func Partition(pairs []quiz.Pair, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res := &Result{Usage: make(map[int]int)}
	pool := make([]quiz.Question, 0, len(pairs))
	for i, p := range pairs {
		q, err := quiz.NewQuestion(i, p)
		if err != nil {
			var qe quiz.QuestionError
			if !errors.As(err, &qe) {
				return nil, err
			}
			res.Skipped = append(res.Skipped, qe)
			continue
		}
		pool = append(pool, q)
	}
	res.PoolSize = len(pool)
	if len(pool) == 0 {
		return res, fmt.Errorf("%w: %d entries skipped", quiz.ErrEmptyPool, len(res.Skipped))
	}

	now := cfg.now()
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var pick func() []int
	if len(pool) <= cfg.MaxPerQuiz {
		pick = func() []int { return rng.Perm(len(pool)) }
	} else {
		queue := newDrawQueue(rng, len(pool))
		pick = func() []int { return queue.take(cfg.MaxPerQuiz) }
	}

	prefix := cfg.prefix()
	stamp := now.Format(idTimeLayout)
	res.Quizzes = make([]quiz.Quiz, 0, cfg.Variations)
	for v := 1; v <= cfg.Variations; v++ {
		indices := pick()
		questions := make([]quiz.Question, len(indices))
		for i, idx := range indices {
			questions[i] = pool[idx]
			res.Usage[pool[idx].ID]++
		}
		res.Quizzes = append(res.Quizzes, quiz.Quiz{
			ID:         QuizID(prefix, stamp, v),
			CreatedAt:  now,
			SourceName: cfg.SourceName,
			Questions:  questions,
		})
	}
	return res, nil
}

// QuizID builds the identifier for one variation.
func QuizID(prefix, stamp string, variation int) string {
	return fmt.Sprintf("%s_%s_%d", prefix, stamp, variation)
}

// Timestamp formats t the way quiz IDs embed it.
func Timestamp(t time.Time) string {
	return t.Format(idTimeLayout)
}

// AutoVariations picks a variation count for a pool when the caller did not
// request one: the pool size divided by the quiz size, rounded, at least one.
func AutoVariations(poolSize, maxPerQuiz int) int {
	if poolSize <= 0 || maxPerQuiz <= 0 {
		return DefaultVariations
	}
	n := int(math.Round(float64(poolSize) / float64(maxPerQuiz)))
	return max(1, n)
}

// drawQueue is a shuffled round-robin queue over pool indices.
type drawQueue struct {
	rng   *rand.Rand
	order []int
	pos   int
}

func newDrawQueue(rng *rand.Rand, n int) *drawQueue {
	q := &drawQueue{rng: rng, order: make([]int, n)}
	q.refill(nil)
	return q
}

// refill reshuffles the queue. Indices in held go last so the variation
// being filled cannot draw them twice.
func (q *drawQueue) refill(held map[int]bool) {
	free := make([]int, 0, len(q.order))
	last := make([]int, 0, len(held))
	for i := range len(q.order) {
		if held[i] {
			last = append(last, i)
		} else {
			free = append(free, i)
		}
	}
	q.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	q.rng.Shuffle(len(last), func(i, j int) { last[i], last[j] = last[j], last[i] })
	q.order = append(free, last...)
	q.pos = 0
}

// take draws n distinct indices. n must be smaller than the queue length.
func (q *drawQueue) take(n int) []int {
	picked := make([]int, 0, n)
	held := make(map[int]bool, n)
	for len(picked) < n {
		if q.pos == len(q.order) {
			q.refill(held)
		}
		idx := q.order[q.pos]
		q.pos++
		picked = append(picked, idx)
		held[idx] = true
	}
	return picked
}
