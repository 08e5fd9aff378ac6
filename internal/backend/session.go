package backend

import (
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

var ErrNoSession = errors.New("no active session")

// Session is the explicit session context: login populates it, logout
// clears it, and everything that talks to the backend receives it
// instead of reaching into ambient storage.
type Session struct {
	mu    sync.RWMutex
	token string
	actor lms.Actor
}

func NewSession() *Session { return &Session{} }

// Init installs a token and actor. When the login response carried no
// user object, the actor is recovered from the token's claims.
func (s *Session) Init(token string, user lms.Record) error {
	actor, err := actorFrom(token, user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.actor = actor
	s.mu.Unlock()
	return nil
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.actor = lms.Actor{}
	s.mu.Unlock()
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Actor() lms.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

func actorFrom(token string, user lms.Record) (lms.Actor, error) {
	if user != nil {
		id, ok := identity.SelfID(user)
		if !ok {
			return lms.Actor{}, errors.New("login user has no id")
		}
		role, ok := lms.NormalizeRole(user.String("role"))
		if !ok {
			return lms.Actor{}, errors.New("login user has unknown role")
		}
		name := user.String("name")
		if name == "" {
			name = user.String("email")
		}
		return lms.Actor{ID: id, DisplayName: name, Role: role}, nil
	}
	return ActorFromToken(token)
}

// ActorFromToken recovers sub/role claims from a bearer token without
// verifying the signature. The backend owns the signing key and enforces
// auth on every call; the claims are only used to shape local views.
func ActorFromToken(token string) (lms.Actor, error) {
	var claims jwt.MapClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return lms.Actor{}, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return lms.Actor{}, errors.New("token has no sub claim")
	}
	rawRole, _ := claims["role"].(string)
	role, ok := lms.NormalizeRole(rawRole)
	if !ok {
		return lms.Actor{}, errors.New("token has no usable role claim")
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = sub
	}
	return lms.Actor{ID: sub, DisplayName: name, Role: role}, nil
}
