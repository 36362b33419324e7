package services

import (
	"strings"
	"sync"
	"time"

	"redapi/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials is the single configured administrator credential pair.
// PasswordHash (bcrypt) takes precedence over the plain Password when set.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
	SessionTTL   time.Duration
}

const defaultSessionTTL = 240 * time.Minute

// SessionService issues, validates, and expires opaque admin session tokens.
// Sessions live in a concurrent map of token to absolute expiry; expired
// entries are purged lazily on lookup.
type SessionService struct {
	Credentials AdminCredentials

	sessions sync.Map // token -> time.Time expiry
	now      func() time.Time
}

func NewSessionService(creds AdminCredentials) *SessionService {
	return &SessionService{Credentials: creds, now: time.Now}
}

func (s *SessionService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	if s.Credentials.SessionTTL > 0 {
		return s.Credentials.SessionTTL
	}
	return defaultSessionTTL
}

// Authenticate checks the credential pair and mints a session token. A
// mismatch returns an empty token with no error; missing configuration is an
// internal error, not an authentication failure.
func (s *SessionService) Authenticate(username, password string) (string, error) {
	creds := s.Credentials
	if strings.TrimSpace(creds.Username) == "" ||
		(strings.TrimSpace(creds.Password) == "" && strings.TrimSpace(creds.PasswordHash) == "") {
		return "", domain.InternalError{Msg: "admin credentials are not configured"}
	}

	if creds.Username != username || !s.passwordMatches(password) {
		return "", nil
	}

	token := uuid.NewString()
	s.sessions.Store(token, s.clock().Add(s.TTL()))
	return token, nil
}

func (s *SessionService) passwordMatches(password string) bool {
	if hash := strings.TrimSpace(s.Credentials.PasswordHash); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return s.Credentials.Password == password
}

// IsValid reports whether a token identifies a live session. Expired entries
// are removed on the way out.
func (s *SessionService) IsValid(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	v, ok := s.sessions.Load(token)
	if !ok {
		return false
	}
	expiry, ok := v.(time.Time)
	if !ok || expiry.Before(s.clock()) {
		s.sessions.Delete(token)
		return false
	}
	return true
}

// Invalidate removes a session; unknown tokens are a no-op.
func (s *SessionService) Invalidate(token string) {
	if token == "" {
		return
	}
	s.sessions.Delete(token)
}

// ActiveSessions counts live entries, purging any that expired.
func (s *SessionService) ActiveSessions() int {
	count := 0
	now := s.clock()
	s.sessions.Range(func(key, value any) bool {
		expiry, ok := value.(time.Time)
		if !ok || expiry.Before(now) {
			s.sessions.Delete(key)
			return true
		}
		count++
		return true
	})
	return count
}
