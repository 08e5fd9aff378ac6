// Package backend is the dashboard's only external boundary: the REST
// assessment/grading backend. Payload shapes are input to tolerate, not a
// contract this client defines, so list responses decode into raw
// records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bt-lms/dashcore/internal/lms"
)

// ErrUnauthorized is surfaced when the backend rejects the token. Fatal
// to the current session only; the caller re-authenticates.
var ErrUnauthorized = errors.New("backend rejected credentials")

// Client is the abstract collaborator consumed by the engine.
type Client interface {
	ListUsers(ctx context.Context) ([]lms.Record, error)
	ListCourses(ctx context.Context) ([]lms.Record, error)
	ListModules(ctx context.Context) ([]lms.Record, error)
	ListLessons(ctx context.Context) ([]lms.Record, error)
	ListAssessments(ctx context.Context, kind lms.AssessmentKind) ([]lms.Record, error)
	ListSubmissions(ctx context.Context, kind lms.AssessmentKind) ([]lms.Record, error)
	ListEnrollments(ctx context.Context) ([]lms.Record, error)

	GetQuestions(ctx context.Context, assessmentID string) ([]lms.Question, error)
	SubmitAttempt(ctx context.Context, assessmentID, learnerID string, answers map[string]string) (lms.ScoreResult, error)
	UpsertQuizGrade(ctx context.Context, quizID, studentID string, score float64, feedback string) error
	GradeSubmission(ctx context.Context, submissionID string, score float64, feedback string) error
	SendMessage(ctx context.Context, receiverID, content string) (lms.Record, error)
	ListMessages(ctx context.Context) ([]lms.Record, error)
}

// HTTPClient talks to the B-T REST backend.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
	Session *Session
}

func NewHTTPClient(baseURL string, timeout time.Duration, sess *Session) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Session: sess,
	}
}

// Login authenticates and initializes the session context.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (lms.Actor, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string     `json:"token"`
		User  lms.Record `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return lms.Actor{}, err
	}
	if resp.Token == "" {
		return lms.Actor{}, errors.New("login response carried no token")
	}
	if err := c.Session.Init(resp.Token, resp.User); err != nil {
		return lms.Actor{}, fmt.Errorf("init session: %w", err)
	}
	return c.Session.Actor(), nil
}

// Logout tears the session down. Purely client-side; the backend's
// tokens are stateless.
func (c *HTTPClient) Logout() { c.Session.Clear() }

// Register creates an account. The new user logs in separately; no
// session is established here.
func (c *HTTPClient) Register(ctx context.Context, name, email, password, role string) (lms.Record, error) {
	body := map[string]string{"name": name, "email": email, "password": password, "role": role}
	var out lms.Record
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/users")
}
func (c *HTTPClient) ListCourses(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/courses")
}
func (c *HTTPClient) ListModules(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/modules")
}
func (c *HTTPClient) ListLessons(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/lessons")
}
func (c *HTTPClient) ListEnrollments(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/enrollments")
}

func (c *HTTPClient) ListAssessments(ctx context.Context, kind lms.AssessmentKind) ([]lms.Record, error) {
	switch kind {
	case lms.AssessmentQuiz:
		return c.list(ctx, "/quizzes")
	case lms.AssessmentAssignment:
		return c.list(ctx, "/assignments")
	}
	return nil, fmt.Errorf("unknown assessment kind %q", kind)
}

func (c *HTTPClient) ListSubmissions(ctx context.Context, kind lms.AssessmentKind) ([]lms.Record, error) {
	switch kind {
	case lms.AssessmentQuiz:
		return c.list(ctx, "/attempts/quiz")
	case lms.AssessmentAssignment:
		return c.list(ctx, "/submissions/assignment")
	}
	return nil, fmt.Errorf("unknown assessment kind %q", kind)
}

func (c *HTTPClient) GetQuestions(ctx context.Context, assessmentID string) ([]lms.Question, error) {
	var out []lms.Question
	path := "/quizzes/" + url.PathEscape(assessmentID) + "/questions"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, assessmentID, learnerID string, answers map[string]string) (lms.ScoreResult, error) {
	body := map[string]any{
		"quizId":    assessmentID,
		"learnerId": learnerID,
		"answers":   answers,
	}
	var out lms.ScoreResult
	if err := c.do(ctx, http.MethodPost, "/attempts/quiz/submit", body, &out); err != nil {
		return lms.ScoreResult{}, err
	}
	return out, nil
}

// UpsertQuizGrade creates-or-updates the one authoritative attempt for
// the (quiz, student) pair.
func (c *HTTPClient) UpsertQuizGrade(ctx context.Context, quizID, studentID string, score float64, feedback string) error {
	body := map[string]any{
		"quizId":    quizID,
		"studentId": studentID,
		"score":     score,
		"feedback":  feedback,
	}
	return c.do(ctx, http.MethodPost, "/attempts/quiz", body, nil)
}

func (c *HTTPClient) GradeSubmission(ctx context.Context, submissionID string, score float64, feedback string) error {
	body := map[string]any{"grade": score, "feedback": feedback}
	path := "/submissions/assignment/" + url.PathEscape(submissionID) + "/grade"
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *HTTPClient) SendMessage(ctx context.Context, receiverID, content string) (lms.Record, error) {
	actor := c.Session.Actor()
	if tok := CallerToken(ctx); tok != "" {
		if a, err := ActorFromToken(tok); err == nil {
			actor = a
		}
	}
	body := map[string]any{
		"sender":   map[string]any{"id": actor.ID},
		"receiver": map[string]any{"id": receiverID},
		"content":  content,
	}
	var out lms.Record
	if err := c.do(ctx, http.MethodPost, "/messages", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context) ([]lms.Record, error) {
	return c.list(ctx, "/messages")
}

func (c *HTTPClient) list(ctx context.Context, path string) ([]lms.Record, error) {
	var out []lms.Record
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// the caller's own token wins; the service session covers calls made
	// outside any request, like the snapshot bulk fetch
	tok := CallerToken(ctx)
	if tok == "" {
		tok = c.Session.Token()
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
