// Package session holds the caller's identity for API calls.
//
// A Session is created on sign-in from the identity provider's token and is
// passed explicitly to every call site; there is no ambient global lookup.
// It is invalidated on sign-out or when the backend rejects the credential,
// and refreshed only when a caller asks for it.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

var (
	// ErrNoSession is returned when no credential is active.
	ErrNoSession = errors.New("no active session")

	// ErrExpired is returned when the credential's exp claim has passed.
	ErrExpired = errors.New("session expired")

	// ErrRefreshFailed is returned when an explicit refresh could not obtain
	// a usable credential. The session is left invalidated.
	ErrRefreshFailed = errors.New("session refresh failed")

	// ErrMalformedToken is returned when a token is not a parseable JWT.
	ErrMalformedToken = errors.New("malformed identity token")
)

// OrganizerGroup is the identity provider group that grants the organizer role.
const OrganizerGroup = "Organizers"

// Claims are the identity token claims the client reads. The signature is
// not verified here; the backend trusts and verifies the token.
type Claims struct {
	jwt.RegisteredClaims
	Email  string   `json:"email,omitempty"`
	Groups []string `json:"cognito:groups,omitempty"`
}

// Role derives the application role from group membership.
func (c Claims) Role() model.Role {
	if slices.Contains(c.Groups, OrganizerGroup) {
		return model.RoleOrganizer
	}
	return model.RoleAttendee
}

// Session is an authenticated caller. The zero value is not usable; a nil
// *Session stands for "signed out".
type Session struct {
	mu          sync.Mutex
	token       string
	claims      Claims
	invalidated bool
	now         func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New starts a session from an identity token.
func New(token string, opts ...Option) (*Session, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return nil, err
	}
	s := &Session{
		token:  strings.TrimSpace(token),
		claims: claims,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ParseClaims reads the claims of a token without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return claims, ErrNoSession
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return claims, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Bearer returns the credential to attach to a request.
func (s *Session) Bearer() (string, error) {
	if s == nil {
		return "", ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated {
		return "", ErrNoSession
	}
	if s.expiredLocked() {
		return "", ErrExpired
	}
	return s.token, nil
}

// Valid reports whether the session can authenticate a call right now.
func (s *Session) Valid() bool {
	_, err := s.Bearer()
	return err == nil
}

// Invalidate ends the session. Subsequent calls go out unauthenticated.
func (s *Session) Invalidate() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// Subject returns the caller's stable user id.
func (s *Session) Subject() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims.Subject
}

// Email returns the caller's email claim.
func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims.Email
}

// Role returns the caller's role; a nil session has no role.
func (s *Session) Role() model.Role {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims.Role()
}

// ExpiresAt returns the token expiry, or the zero time when the token
// carries no exp claim.
func (s *Session) ExpiresAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt.Time
}

// Refresh replaces the credential with a fresh one from src. On failure
// the session is invalidated.
func (s *Session) Refresh(ctx context.Context, src TokenSource) error {
	if s == nil {
		return ErrNoSession
	}
	token, err := src.Token(ctx)
	if err != nil {
		s.Invalidate()
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	claims, err := ParseClaims(token)
	if err != nil {
		s.Invalidate()
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	s.claims = claims
	s.invalidated = false
	if s.expiredLocked() {
		s.invalidated = true
		return fmt.Errorf("%w: %v", ErrRefreshFailed, ErrExpired)
	}
	return nil
}

func (s *Session) expiredLocked() bool {
	if s.claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(s.claims.ExpiresAt.Time)
}

// TokenSource supplies identity tokens for sign-in and refresh.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always yields the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", ErrNoSession
	}
	return string(t), nil
}

// FileToken is a TokenSource that re-reads a token file on every call, so
// an external sign-in helper can rotate it.
type FileToken string

func (f FileToken) Token(context.Context) (string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// SignIn starts a session from the token src yields.
func SignIn(ctx context.Context, src TokenSource, opts ...Option) (*Session, error) {
	token, err := src.Token(ctx)
	if err != nil {
		return nil, err
	}
	return New(token, opts...)
}

// MintUnsigned builds an unsigned development token carrying the given
// identity. It is only accepted by the local API stub.
func MintUnsigned(subject, email string, role model.Role, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	if role == model.RoleOrganizer {
		claims.Groups = []string{OrganizerGroup}
	}
	return jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
}
