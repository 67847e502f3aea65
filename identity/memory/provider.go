// Package memory is an in-process identity.Provider for sandbox
// development and tests. Passwords are bcrypt hashed; ID tokens are opaque
// random values valid until sign-out or provider restart.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/identity"
)

const (
	minPasswordLength = 8
	sessionTTL        = time.Hour
)

type userRecord struct {
	uid          string
	email        string
	passwordHash []byte
}

type sessionRecord struct {
	uid       string
	expiresAt time.Time
}

// Provider implements identity.Provider entirely in memory.
type Provider struct {
	mu       sync.RWMutex
	byEmail  map[string]*userRecord
	byUID    map[string]*userRecord
	sessions map[string]sessionRecord
	now      func() time.Time
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{
		byEmail:  make(map[string]*userRecord),
		byUID:    make(map[string]*userRecord),
		sessions: make(map[string]sessionRecord),
		now:      time.Now,
	}
}

// SignUp implements identity.Provider.
func (p *Provider) SignUp(_ context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, claritycash.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, claritycash.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, claritycash.ErrUserExists
	}

	user := &userRecord{
		uid:          uuid.NewString(),
		email:        email,
		passwordHash: hash,
	}
	p.byEmail[email] = user
	p.byUID[user.uid] = user

	return p.issueSessionLocked(user), nil
}

// SignIn implements identity.Provider.
func (p *Provider) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.byEmail[email]
	if !ok {
		return nil, claritycash.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)); err != nil {
		return nil, claritycash.ErrInvalidCredentials
	}

	return p.issueSessionLocked(user), nil
}

// VerifyIDToken implements identity.Provider.
func (p *Provider) VerifyIDToken(_ context.Context, idToken string) (*domain.UserIdentity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	session, ok := p.sessions[idToken]
	if !ok || p.now().After(session.expiresAt) {
		return nil, claritycash.ErrNoSession
	}
	user, ok := p.byUID[session.uid]
	if !ok {
		return nil, claritycash.ErrNoSession
	}
	return &domain.UserIdentity{UID: user.uid, Email: user.email}, nil
}

// Lookup implements identity.Provider.
func (p *Provider) Lookup(_ context.Context, uid string) (*domain.UserIdentity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	user, ok := p.byUID[uid]
	if !ok {
		return nil, fmt.Errorf("user %s not found", uid)
	}
	return &domain.UserIdentity{UID: user.uid, Email: user.email}, nil
}

// RevokeSessions drops every session for the uid (sign-out everywhere).
func (p *Provider) RevokeSessions(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for token, session := range p.sessions {
		if session.uid == uid {
			delete(p.sessions, token)
		}
	}
}

func (p *Provider) issueSessionLocked(user *userRecord) *domain.Session {
	idToken := "mem-" + uuid.NewString()
	expiresAt := p.now().Add(sessionTTL)
	p.sessions[idToken] = sessionRecord{uid: user.uid, expiresAt: expiresAt}

	return &domain.Session{
		Identity:  domain.UserIdentity{UID: user.uid, Email: user.email},
		IDToken:   idToken,
		ExpiresAt: expiresAt,
	}
}
