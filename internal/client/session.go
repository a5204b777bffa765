package client

import (
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Session holds the admin bearer token. Once logged out every further
// request fails fast with ErrNotAuthenticated.
type Session struct {
	mu        sync.RWMutex
	token     string
	loggedOut bool
	onLogout  []func()
}

func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether requests may still be sent
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loggedOut
}

// OnLogout registers a callback run once when the session ends
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Logout clears the token and runs the logout callbacks
func (s *Session) Logout() {
	s.mu.Lock()
	if s.loggedOut {
		s.mu.Unlock()
		return
	}
	s.loggedOut = true
	s.token = ""
	callbacks := s.onLogout
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Interceptor inspects every response before it reaches the caller.
// A non-nil error replaces the call's result.
type Interceptor func(resp *resty.Response) error

// LogoutOnUnauthorized ends the session when the API answers 401 or 403
func LogoutOnUnauthorized(session *Session) Interceptor {
	return func(resp *resty.Response) error {
		status := resp.StatusCode()
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return nil
		}

		log.Warnf("🔒 %s %s answered %d, logging out", resp.Request.Method, resp.Request.URL, status)
		session.Logout()
		return fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	}
}
