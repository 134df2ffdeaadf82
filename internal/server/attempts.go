package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/scoring"
)

// attemptSession is one in-flight attempt. Its mutex serializes answers
// for the same attempt; different attempts proceed independently.
// lastSeen is guarded by the server's registry mutex.
type attemptSession struct {
	mu       sync.Mutex
	id       string
	path     string
	attempt  *scoring.Attempt
	lastSeen time.Time
}

func (s *Server) startAttempt(path string, qz *quiz.Quiz) *attemptSession {
	now := s.cfg.Clock()
	sess := &attemptSession{
		id:       uuid.NewString(),
		path:     path,
		attempt:  scoring.NewAttempt(qz, scoring.WithClock(s.cfg.Clock)),
		lastSeen: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(now)
	for len(s.attempts) >= s.cfg.MaxAttempts {
		s.evictOldestLocked()
	}
	s.attempts[sess.id] = sess
	return sess
}

// lookupAttempt returns a live attempt and marks it as used.
func (s *Server) lookupAttempt(id string) (*attemptSession, bool) {
	now := s.cfg.Clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(now)
	sess, ok := s.attempts[id]
	if ok {
		sess.lastSeen = now
	}
	return sess, ok
}

func (s *Server) dropAttempt(id string) {
	s.mu.Lock()
	delete(s.attempts, id)
	s.mu.Unlock()
}

// evictLocked removes attempts idle for longer than the TTL. Abandoned
// attempts are never finished, so this is the only way they leave memory.
func (s *Server) evictLocked(now time.Time) {
	for id, sess := range s.attempts {
		if now.Sub(sess.lastSeen) > s.cfg.AttemptTTL {
			delete(s.attempts, id)
			s.log.WithField("attempt_id", id).Debug("evicted idle attempt")
		}
	}
}

func (s *Server) evictOldestLocked() {
	var oldest *attemptSession
	for _, sess := range s.attempts {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.attempts, oldest.id)
		s.log.WithField("attempt_id", oldest.id).Debug("evicted attempt over capacity")
	}
}

// publicQuestion is a question as sent to clients, without its answer.
type publicQuestion struct {
	ID   int    `json:"id"`
	Text string `json:"question"`
}

type publicQuiz struct {
	ID         string           `json:"quiz_id"`
	SourceName string           `json:"source_file"`
	Questions  []publicQuestion `json:"questions"`
}

func toPublic(qz *quiz.Quiz) publicQuiz {
	out := publicQuiz{
		ID:         qz.ID,
		SourceName: qz.SourceName,
		Questions:  make([]publicQuestion, len(qz.Questions)),
	}
	for i, q := range qz.Questions {
		out.Questions[i] = publicQuestion{ID: q.ID, Text: q.Text}
	}
	return out
}
