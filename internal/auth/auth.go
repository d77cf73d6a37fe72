// Package auth covers credential hashing and server-side sessions.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/user"
	"github.com/topbestgames/platform/internal/storage"
	"github.com/topbestgames/platform/pkg/logger"
)

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", core.RequiredError("password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsLegacyHash reports whether a stored hash predates bcrypt. The old
// deployment stored scrypt output as "hexhash.hexsalt"; anything that is
// not a bcrypt hash is treated as legacy.
func IsLegacyHash(hash string) bool {
	return !strings.HasPrefix(hash, "$2")
}

// Manager issues and resolves login sessions on top of the active
// storage backend.
type Manager struct {
	store storage.Store
	log   *logger.Logger
	ttl   time.Duration
	now   func() time.Time
}

// NewManager builds a session manager. ttl bounds how long a login lives.
func NewManager(store storage.Store, log *logger.Logger, ttl time.Duration) *Manager {
	return &Manager{store: store, log: log, ttl: ttl, now: time.Now}
}

// Register creates an account with a hashed password. Duplicate usernames
// and emails surface as conflict errors from the store.
func (m *Manager) Register(ctx context.Context, username, password, email, fullName string) (user.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	return m.store.CreateUser(ctx, user.User{
		Username: username,
		Password: hash,
		Email:    email,
		FullName: fullName,
	})
}

// Login verifies credentials and opens a session. Unknown accounts and bad
// passwords both return ErrUnauthorized so callers cannot probe usernames.
func (m *Manager) Login(ctx context.Context, username, password string) (storage.Session, user.User, error) {
	u, err := m.store.GetUserByUsername(ctx, username)
	if err != nil {
		return storage.Session{}, user.User{}, err
	}
	if u == nil || !CheckPassword(u.Password, password) {
		return storage.Session{}, user.User{}, core.ErrUnauthorized
	}

	now := m.now().UTC()
	sess, err := m.store.Sessions().CreateSession(ctx, storage.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(m.ttl),
	})
	if err != nil {
		return storage.Session{}, user.User{}, err
	}

	// Expired sessions are reaped opportunistically on login.
	if _, err := m.store.Sessions().DeleteExpiredSessions(ctx, now); err != nil {
		m.log.WithError(err).Warn("failed to reap expired sessions")
	}

	return sess, *u, nil
}

// Logout closes a session. Unknown tokens are a no-op.
func (m *Manager) Logout(ctx context.Context, token string) error {
	_, err := m.store.Sessions().DeleteSession(ctx, token)
	return err
}

// UserFromToken resolves a session token to its account. Returns nil for
// unknown, expired or orphaned tokens.
func (m *Manager) UserFromToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := m.store.Sessions().GetSession(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.ExpiresAt.Before(m.now()) {
		if _, err := m.store.Sessions().DeleteSession(ctx, token); err != nil {
			m.log.WithError(err).Warn("failed to drop expired session")
		}
		return nil, nil
	}
	return m.store.GetUser(ctx, sess.UserID)
}
