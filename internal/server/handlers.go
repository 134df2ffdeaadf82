package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizzer/internal/answer"
	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/quizfile"
	"github.com/abhisek/quizzer/internal/report"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/store"
)

const defaultResultsLimit = 10

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := quizfile.List(s.cfg.QuizzesDir, quizfile.ListOptions{
		IncludeTestData: s.cfg.TestMode,
		OnInvalid: func(path string, err error) {
			s.log.WithError(err).WithField("path", path).Warn("skipping invalid quiz file")
		},
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if list == nil {
		list = []quizfile.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	qz, _, ok := s.loadQuiz(w, r, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPublic(qz))
}

type checkAnswerRequest struct {
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

type checkAnswerResponse struct {
	Correct           bool   `json:"correct"`
	NormalizedUser    string `json:"normalized_user"`
	NormalizedCorrect string `json:"normalized_correct"`
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req checkAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	canonical := answer.Normalize(req.CorrectAnswer)
	if len(canonical) == 0 {
		writeError(w, http.StatusBadRequest, "correct_answer is empty")
		return
	}
	v := answer.Check(canonical, req.UserAnswer)
	writeJSON(w, http.StatusOK, checkAnswerResponse{
		Correct:           v.Correct,
		NormalizedUser:    answer.Join(v.Normalized),
		NormalizedCorrect: answer.Join(canonical),
	})
}

type startAttemptRequest struct {
	Path string `json:"path"`
}

type startAttemptResponse struct {
	AttemptID string     `json:"attempt_id"`
	Quiz      publicQuiz `json:"quiz"`
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	qz, path, ok := s.loadQuiz(w, r, req.Path)
	if !ok {
		return
	}
	if len(qz.Questions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "quiz has no questions")
		return
	}
	sess := s.startAttempt(path, qz)
	s.log.WithFields(logrus.Fields{"attempt_id": sess.id, "quiz_id": qz.ID}).Info("attempt started")
	writeJSON(w, http.StatusCreated, startAttemptResponse{AttemptID: sess.id, Quiz: toPublic(qz)})
}

type recordAnswerRequest struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

type recordAnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Answered      int    `json:"answered"`
	Total         int    `json:"total"`
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupAttempt(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "attempt not found")
		return
	}
	var req recordAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	q, found := sess.attempt.Quiz().Question(req.QuestionID)
	if !found {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	correct, err := sess.attempt.Record(q, req.Answer)
	if err != nil {
		s.attemptError(w, r, err)
		return
	}
	snap := sess.attempt.Snapshot()
	writeJSON(w, http.StatusOK, recordAnswerResponse{
		Correct:       correct,
		CorrectAnswer: q.Display,
		Answered:      snap.Answered,
		Total:         snap.Total,
	})
}

type finishAttemptRequest struct {
	PassThreshold *float64 `json:"pass_threshold,omitempty"`
}

type finishAttemptResponse struct {
	scoring.Result
	AttemptID string `json:"attempt_id,omitempty"`
	ReportURL string `json:"report_url,omitempty"`
}

func (s *Server) handleFinishAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.lookupAttempt(id)
	if !ok {
		writeError(w, http.StatusNotFound, "attempt not found")
		return
	}
	var req finishAttemptRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	threshold := s.cfg.PassThreshold
	if req.PassThreshold != nil {
		threshold = *req.PassThreshold
	}

	sess.mu.Lock()
	res, err := sess.attempt.Finalize(threshold)
	sess.mu.Unlock()
	if err != nil {
		s.attemptError(w, r, err)
		return
	}
	s.dropAttempt(id)

	log := s.log.WithFields(logrus.Fields{"attempt_id": id, "quiz_id": res.QuizID})
	out := finishAttemptResponse{Result: res}
	source := sess.attempt.Quiz().SourceName

	if s.repo != nil {
		storedID, err := s.repo.SaveResult(r.Context(), source, res)
		if err != nil {
			log.WithError(err).Error("failed to store result")
		} else {
			out.AttemptID = storedID
		}
		if s.cfg.HistoryLimit > 0 {
			if _, err := s.repo.Prune(r.Context(), s.cfg.HistoryLimit); err != nil {
				log.WithError(err).Warn("failed to prune history")
			}
		}
	}
	if s.cfg.ReportsDir != "" {
		if _, err := report.Save(s.cfg.ReportsDir, res, source); err != nil {
			log.WithError(err).Error("failed to write report")
		} else {
			out.ReportURL = "/report/" + res.QuizID
		}
	}

	log.WithFields(logrus.Fields{
		"score":  res.ScorePercentage,
		"passed": res.Passed,
	}).Info("attempt finished")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusOK, []store.AttemptRecord{})
		return
	}
	limit := defaultResultsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recs, err := s.repo.Recent(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	for i := range recs {
		fs, err := s.repo.Failures(r.Context(), recs[i].ID)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		recs[i].Failures = fs
	}
	if recs == nil {
		recs = []store.AttemptRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type statsResponse struct {
	store.Summary
	PassRate float64 `json:"pass_rate"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var sum store.Summary
	if s.repo != nil {
		var err error
		if sum, err = s.repo.Summary(r.Context()); err != nil {
			s.internalError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, statsResponse{Summary: sum, PassRate: sum.PassRate()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path, err := report.Path(s.cfg.ReportsDir, chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

// loadQuiz resolves rel inside the quiz root and loads it, writing an
// error response when that fails.
func (s *Server) loadQuiz(w http.ResponseWriter, r *http.Request, rel string) (*quiz.Quiz, string, bool) {
	if rel == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return nil, "", false
	}
	path, err := quizfile.Resolve(s.cfg.QuizzesDir, rel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	qz, err := quizfile.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusNotFound, "quiz not found")
		return nil, "", false
	case errors.Is(err, quizfile.ErrInvalidFile), errors.Is(err, quizfile.ErrUnsupportedVersion),
		errors.Is(err, quiz.ErrInvalidQuestionData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, "", false
	case err != nil:
		s.internalError(w, r, err)
		return nil, "", false
	}
	return qz, path, true
}

func (s *Server) attemptError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidConfiguration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrAttemptState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON but accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
