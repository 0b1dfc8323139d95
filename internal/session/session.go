package session

import (
	"sync"

	"finditweb/internal/models"
	"finditweb/internal/notify"
)

// Session is the per-browser source of truth for "who is logged in". It
// lives only in memory; the upstream API's cookie is the durable store.
type Session struct {
	mu sync.Mutex

	id        string
	csrfToken string

	user      *models.User
	loading   bool
	lastError string
	returnTo  string

	// upstream API cookie, sealed at rest
	upstreamSealed string

	notices *notify.Queue
}

func (s *Session) ID() string { return s.id }

func (s *Session) CSRFToken() string { return s.csrfToken }

func (s *Session) Notices() *notify.Queue { return s.notices }

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// SetReturnTo records the path a guard bounced so the login flow can send
// the user back there.
func (s *Session) SetReturnTo(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returnTo = path
}

// TakeReturnTo returns the recorded path and clears it.
func (s *Session) TakeReturnTo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.returnTo
	s.returnTo = ""
	return p
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) setLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *Session) setUpstreamSealed(v string) {
	s.mu.Lock()
	s.upstreamSealed = v
	s.mu.Unlock()
}

func (s *Session) upstreamSealedValue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upstreamSealed
}
