// Package session drives a single learner's quiz-taking lifecycle:
// load the question set, collect answers, submit exactly once, show the
// result. Scoring happens server-side only; the client never holds the
// answer key.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bt-lms/dashcore/internal/lms"
)

type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateAborted    State = "aborted"
)

var (
	ErrAlreadySubmitted = errors.New("session already completed")
	ErrNotInProgress    = errors.New("session not in progress")
	// ErrSubmitFailed wraps a transport failure during submit. The
	// session stays InProgress with answers intact; submit is retryable.
	ErrSubmitFailed = errors.New("submit failed")
)

// AttemptBackend is the slice of the backend a session needs.
type AttemptBackend interface {
	GetQuestions(ctx context.Context, assessmentID string) ([]lms.Question, error)
	SubmitAttempt(ctx context.Context, assessmentID, learnerID string, answers map[string]string) (lms.ScoreResult, error)
}

// Session is one quiz-taking instance. It is transient: exiting or
// finishing destroys it, and retrying after Completed requires a fresh
// instance.
type Session struct {
	mu sync.Mutex

	backend      AttemptBackend
	assessmentID string
	learnerID    string

	state     State
	questions []lms.Question
	answers   map[string]string
	result    *lms.ScoreResult
}

func New(be AttemptBackend, assessmentID, learnerID string) *Session {
	return &Session{
		backend:      be,
		assessmentID: assessmentID,
		learnerID:    learnerID,
		state:        StateIdle,
		answers:      map[string]string{},
	}
}

// NewCompleted builds a session that starts in Completed showing a prior
// result — the re-entry path for a learner who already has a finished
// attempt. Submit on such a session is refused without a network call.
func NewCompleted(assessmentID, learnerID string, prior lms.ScoreResult) *Session {
	s := New(nil, assessmentID, learnerID)
	s.state = StateCompleted
	s.result = &prior
	return s
}

// Start fetches the question set. Idle -> Loading -> InProgress, or
// Aborted if the fetch fails (blocking error, no partial UI).
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("start from %s: %w", s.state, ErrNotInProgress)
	}
	s.state = StateLoading
	s.mu.Unlock()

	qs, err := s.backend.GetQuestions(ctx, s.assessmentID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateAborted
		return fmt.Errorf("load questions: %w", err)
	}
	s.questions = qs
	s.answers = map[string]string{}
	s.state = StateInProgress
	return nil
}

// Answer records one answer keyed by question id. Repeated edits of the
// same question overwrite in place; no validation until submit, blanks
// are allowed.
func (s *Session) Answer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	s.answers[questionID] = value
	return nil
}

// Submit sends the full answers map. Single-shot: once Completed, further
// calls fail without touching the network. A transport failure reverts to
// InProgress with the answers intact.
func (s *Session) Submit(ctx context.Context) (lms.ScoreResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateCompleted:
		s.mu.Unlock()
		return lms.ScoreResult{}, ErrAlreadySubmitted
	case StateInProgress:
	default:
		s.mu.Unlock()
		return lms.ScoreResult{}, ErrNotInProgress
	}
	s.state = StateSubmitting
	payload := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		payload[k] = v
	}
	s.mu.Unlock()

	res, err := s.backend.SubmitAttempt(ctx, s.assessmentID, s.learnerID, payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateInProgress
		return lms.ScoreResult{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	s.result = &res
	s.state = StateCompleted
	return res, nil
}

// Abort exits the session. Allowed from Idle, Loading, and InProgress;
// a no-op once a submit is in flight or the session is finished.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInProgress || s.state == StateLoading || s.state == StateIdle {
		s.state = StateAborted
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Questions() []lms.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}

// Answers returns a copy of the current answer map.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Session) Result() (lms.ScoreResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return lms.ScoreResult{}, false
	}
	return *s.result, true
}
