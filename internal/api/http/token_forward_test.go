package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/session"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

// The facade proxies under the caller's own credentials: whatever bearer
// arrives on the request is what the backend must see on the calls made
// for it, never an empty header or the last login's token.
func TestCallerBearerReachesBackend(t *testing.T) {
	var mu sync.Mutex
	auth := map[string]string{}
	be := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/questions"):
			_ = json.NewEncoder(w).Encode([]lms.Question{{ID: "q1", Text: "2+2?"}})
		case r.URL.Path == "/attempts/quiz/submit":
			_ = json.NewEncoder(w).Encode(lms.ScoreResult{Score: 1, TotalMarks: 1})
		default:
			_, _ = w.Write([]byte("[]"))
		}
	}))
	defer be.Close()

	client := backend.NewHTTPClient(be.URL, time.Second, backend.NewSession())
	loader := snapshot.NewLoader(client, nil)
	if _, err := loader.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	r := chi.NewRouter()
	Mount(r, Deps{
		Loader:   loader,
		Backend:  client,
		Client:   client,
		Sessions: session.NewManager(),
		Grader:   grading.NewGrader(client),
	})

	tok := makeToken(t, "s1", "student")
	w := doReq(t, r, "POST", "/sessions", tok, `{"assessmentId":"t1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", w.Code, w.Body)
	}
	var sv sessionView
	if err := json.Unmarshal(w.Body.Bytes(), &sv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	w = doReq(t, r, "POST", "/sessions/"+sv.ID+"/answers", tok, `{"questionId":"q1","value":"4"}`)
	if w.Code != 200 {
		t.Fatalf("answer: %d %s", w.Code, w.Body)
	}
	w = doReq(t, r, "POST", "/sessions/"+sv.ID+"/submit", tok, "")
	if w.Code != 200 {
		t.Fatalf("submit: %d %s", w.Code, w.Body)
	}

	mu.Lock()
	defer mu.Unlock()
	want := "Bearer " + tok
	if auth["/quizzes/t1/questions"] != want {
		t.Fatalf("questions fetch Authorization = %q, want the caller's bearer", auth["/quizzes/t1/questions"])
	}
	if auth["/attempts/quiz/submit"] != want {
		t.Fatalf("attempt submit Authorization = %q, want the caller's bearer", auth["/attempts/quiz/submit"])
	}
	// the snapshot re-fetch after submit is a service call, not the caller's
	if auth["/attempts/quiz"] != "" {
		t.Fatalf("snapshot refresh Authorization = %q, want the service session", auth["/attempts/quiz"])
	}
}
