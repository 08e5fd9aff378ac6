package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bt-lms/dashcore/internal/lms"
)

func signedToken(t *testing.T, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "role": role, "name": "Test User",
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestLoginInitializesSession(t *testing.T) {
	token := signedToken(t, "u1", "ROLE_FACILITATOR")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"user":  map[string]any{"id": float64(9), "name": "Fran", "role": "ROLE_FACILITATOR"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, NewSession())
	actor, err := c.Login(context.Background(), "fran@school.test", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if actor.ID != "9" || actor.Role != lms.RoleFacilitator {
		t.Fatalf("actor = %+v", actor)
	}
	if !c.Session.Active() {
		t.Fatal("session inactive after login")
	}
	c.Logout()
	if c.Session.Active() {
		t.Fatal("session survives logout")
	}
}

func TestActorFromTokenClaims(t *testing.T) {
	// Login responses sometimes omit the user object; claims carry it.
	actor, err := ActorFromToken(signedToken(t, "s7", "learner"))
	if err != nil {
		t.Fatalf("ActorFromToken: %v", err)
	}
	if actor.ID != "s7" || actor.Role != lms.RoleStudent {
		t.Fatalf("actor = %+v, want learner normalized to student", actor)
	}
}

func TestBearerForwardedAndListDecodes(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "title": "Algebra"},
			{"id": "c2", "title": "Biology"},
		})
	}))
	defer srv.Close()

	sess := NewSession()
	if err := sess.Init(signedToken(t, "u1", "admin"), nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	c := NewHTTPClient(srv.URL, time.Second, sess)

	recs, err := c.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[1].String("title") != "Biology" {
		t.Fatalf("records = %v", recs)
	}
	if gotAuth != "Bearer "+sess.Token() {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestCallerTokenPreferredOverSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	sess := NewSession()
	if err := sess.Init(signedToken(t, "svc", "admin"), nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	c := NewHTTPClient(srv.URL, time.Second, sess)

	caller := signedToken(t, "s1", "student")
	if _, err := c.GetQuestions(WithCallerToken(context.Background(), caller), "q1"); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if gotAuth != "Bearer "+caller {
		t.Fatalf("Authorization = %q, want the caller's token", gotAuth)
	}

	// without a caller token the session still applies
	if _, err := c.ListCourses(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer "+sess.Token() {
		t.Fatalf("Authorization = %q, want the session token", gotAuth)
	}
}

func TestUnauthorizedSurfacedAsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, NewSession())
	_, err := c.ListUsers(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestSubmitAttemptPayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(lms.ScoreResult{Score: 6, TotalMarks: 10})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, NewSession())
	res, err := c.SubmitAttempt(context.Background(), "q1", "s1", map[string]string{"1": "A"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 6 {
		t.Fatalf("result = %+v", res)
	}
	if got["quizId"] != "q1" || got["learnerId"] != "s1" {
		t.Fatalf("payload = %v", got)
	}
}

func TestSendMessageNestedPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "m1"})
	}))
	defer srv.Close()

	sess := NewSession()
	_ = sess.Init(signedToken(t, "u1", "student"), nil)
	c := NewHTTPClient(srv.URL, time.Second, sess)

	if _, err := c.SendMessage(context.Background(), "u2", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	sender, _ := got["sender"].(map[string]any)
	receiver, _ := got["receiver"].(map[string]any)
	if sender["id"] != "u1" || receiver["id"] != "u2" || got["content"] != "hello" {
		t.Fatalf("payload = %v", got)
	}

	// a caller token overrides the session identity for the sender
	callerCtx := WithCallerToken(context.Background(), signedToken(t, "u3", "student"))
	if _, err := c.SendMessage(callerCtx, "u2", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	sender, _ = got["sender"].(map[string]any)
	if sender["id"] != "u3" {
		t.Fatalf("sender = %v, want the caller's id", sender)
	}
}
