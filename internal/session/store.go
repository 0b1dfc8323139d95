package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/patrickmn/go-cache"

	"finditweb/internal/config"
	"finditweb/internal/models"
	"finditweb/internal/notify"
	"finditweb/internal/upstream"
)

// Store manages browser sessions and runs every auth operation against
// the upstream API. Sessions idle out of the cache after the configured
// window; nothing survives a process restart.
type Store struct {
	cfg      config.Config
	api      *upstream.Client
	key      []byte
	sessions *cache.Cache
}

func NewStore(cfg config.Config, api *upstream.Client) *Store {
	return &Store{
		cfg:      cfg,
		api:      api,
		key:      deriveKey(cfg.SessionEncryptKey),
		sessions: cache.New(cfg.SessionIdleDuration(), cfg.SessionIdleDuration()/4),
	}
}

// Attach returns the browser session for the request, creating and
// bootstrapping a fresh one when no valid session cookie is present.
// Reusing an existing session slides its idle window.
func (s *Store) Attach(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(s.cfg.SessionCookieName); err == nil && c.Value != "" {
		if v, ok := s.sessions.Get(c.Value); ok {
			sess := v.(*Session)
			s.sessions.SetDefault(sess.id, sess)
			return sess
		}
	}

	sess := &Session{
		id:        newToken(),
		csrfToken: newToken(),
		loading:   true,
		notices:   notify.NewQueue(),
	}
	s.sessions.SetDefault(sess.id, sess)
	s.setCookies(w, sess)

	// One bootstrap probe per store creation, bounded by its own timeout.
	s.Bootstrap(r.Context(), sess)
	return sess
}

// Lookup fetches a session by token without touching cookies. Used by
// tests and the notification dismiss endpoint.
func (s *Store) Lookup(token string) (*Session, bool) {
	v, ok := s.sessions.Get(token)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Bootstrap asks the upstream API whether a session already exists. Only
// a timeout is surfaced to the user; every other failure just leaves the
// session anonymous.
func (s *Store) Bootstrap(ctx context.Context, sess *Session) {
	defer sess.setLoading(false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AuthCheckTimeout)
	defer cancel()

	user, cookie, err := s.api.CheckAuth(ctx, s.upstreamCookie(sess))
	if err != nil {
		if upstream.IsTimeout(err) {
			sess.Notices().Post("Unable to connect to server. Please try again later.", models.NoticeError, s.cfg.NotificationTTL)
		}
		log.Printf("auth check failed session=%s err=%v", sess.id, err)
		return
	}
	if user != nil {
		sess.setUser(user)
	}
	s.storeUpstreamCookie(sess, cookie)
}

// Login exchanges credentials with the upstream API. Failures are
// recorded on the session, surfaced as a notification, and returned to
// the caller so the form can stay on the page.
func (s *Store) Login(ctx context.Context, sess *Session, username, password string) error {
	sess.setLoading(true)
	sess.setLastError("")
	defer sess.setLoading(false)

	user, cookie, err := s.api.Login(ctx, username, password)
	if err != nil {
		msg := failureMessage(err, "Login failed")
		sess.setLastError(msg)
		sess.Notices().Post(msg, models.NoticeError, s.cfg.NotificationTTL)
		log.Printf("login failed session=%s err=%v", sess.id, err)
		return err
	}
	sess.setUser(&user)
	s.storeUpstreamCookie(sess, cookie)
	sess.Notices().Post("Successfully logged in!", models.NoticeSuccess, s.cfg.NotificationTTL)
	return nil
}

// Register creates an account; the upstream API treats the new user as
// already authenticated, so no separate login follows.
func (s *Store) Register(ctx context.Context, sess *Session, username, email, password string) error {
	sess.setLoading(true)
	sess.setLastError("")
	defer sess.setLoading(false)

	user, cookie, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		msg := failureMessage(err, "Registration failed")
		sess.setLastError(msg)
		sess.Notices().Post(msg, models.NoticeError, s.cfg.NotificationTTL)
		log.Printf("register failed session=%s err=%v", sess.id, err)
		return err
	}
	sess.setUser(&user)
	s.storeUpstreamCookie(sess, cookie)
	sess.Notices().Post("Account created successfully!", models.NoticeSuccess, s.cfg.NotificationTTL)
	return nil
}

// Logout clears the local user no matter what the remote call does; a
// remote failure only adds an error notification.
func (s *Store) Logout(ctx context.Context, sess *Session) {
	sess.setLoading(true)
	defer sess.setLoading(false)

	err := s.api.Logout(ctx, s.upstreamCookie(sess))
	sess.setUser(nil)
	sess.setUpstreamSealed("")
	if err != nil {
		log.Printf("logout failed session=%s err=%v", sess.id, err)
		sess.Notices().Post("Failed to logout. Please try again.", models.NoticeError, s.cfg.NotificationTTL)
		return
	}
	sess.Notices().Post("Successfully logged out", models.NoticeSuccess, s.cfg.NotificationTTL)
}

func (s *Store) ClearError(sess *Session) {
	sess.setLastError("")
}

// UpstreamCookie exposes the decrypted upstream credential for
// credentialed item and admin calls.
func (s *Store) UpstreamCookie(sess *Session) string {
	return s.upstreamCookie(sess)
}

func (s *Store) upstreamCookie(sess *Session) string {
	sealed := sess.upstreamSealedValue()
	if sealed == "" {
		return ""
	}
	cookie, err := openString(s.key, sealed)
	if err != nil {
		log.Printf("unseal upstream cookie failed session=%s err=%v", sess.id, err)
		return ""
	}
	return cookie
}

func (s *Store) storeUpstreamCookie(sess *Session, cookie string) {
	if cookie == "" {
		return
	}
	sealed, err := sealString(s.key, cookie)
	if err != nil {
		log.Printf("seal upstream cookie failed session=%s err=%v", sess.id, err)
		return
	}
	sess.setUpstreamSealed(sealed)
}

func (s *Store) setCookies(w http.ResponseWriter, sess *Session) {
	maxAge := int(s.cfg.SessionIdleDuration().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CSRFCookieName,
		Value:    sess.csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// failureMessage maps an upstream failure to the inline message: the
// server-provided text for status errors, a generic line otherwise.
func failureMessage(err error, fallback string) string {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return upstream.ErrorMessage(err, fallback)
	}
	return "An unexpected error occurred"
}

func newToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
