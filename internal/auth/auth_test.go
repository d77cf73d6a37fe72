package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/storage"
	"github.com/topbestgames/platform/pkg/logger"
)

func newManager(t *testing.T) (*Manager, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return NewManager(mem, logger.NewDefault("auth-test"), time.Hour), mem
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}

func TestIsLegacyHash(t *testing.T) {
	if IsLegacyHash("$2a$10$abcdefghijklmnopqrstuv") {
		t.Error("bcrypt hash flagged as legacy")
	}
	if !IsLegacyHash("6df3a91c.a1b2c3d4") {
		t.Error("scrypt-format hash not flagged as legacy")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	u, err := m.Register(ctx, "alice", "s3cret", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Password == "s3cret" {
		t.Fatal("password stored in plaintext")
	}

	sess, got, err := m.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" || got.ID != u.ID {
		t.Errorf("session = %+v, user = %+v", sess, got)
	}

	resolved, err := m.UserFromToken(ctx, sess.Token)
	if err != nil || resolved == nil || resolved.ID != u.ID {
		t.Fatalf("UserFromToken = (%v, %v)", resolved, err)
	}

	if err := m.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	resolved, err = m.UserFromToken(ctx, sess.Token)
	if err != nil || resolved != nil {
		t.Errorf("token survived logout: (%v, %v)", resolved, err)
	}
}

func TestLoginFailures(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	if _, err := m.Register(ctx, "bob", "s3cret", "bob@example.com", ""); err != nil {
		t.Fatal(err)
	}

	if _, _, err := m.Login(ctx, "bob", "wrong"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, _, err := m.Login(ctx, "nobody", "s3cret"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	if _, err := m.Register(ctx, "carol", "s3cret", "carol@example.com", ""); err != nil {
		t.Fatal(err)
	}

	sess, _, err := m.Login(ctx, "carol", "s3cret")
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	resolved, err := m.UserFromToken(ctx, sess.Token)
	if err != nil || resolved != nil {
		t.Errorf("expired token resolved: (%v, %v)", resolved, err)
	}
}
