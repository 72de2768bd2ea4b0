package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"support-chat/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	users := newMockUserRepo(domain.User{
		ID:           "c1",
		Email:        "c1@example.com",
		Role:         domain.RoleClient,
		PasswordHash: string(hash),
	})
	jwtSvc := NewJWTService("secret", time.Minute)
	return NewAuthService(zap.NewNop(), users, jwtSvc), jwtSvc
}

func TestAuthServiceLogin_Success(t *testing.T) {
	svc, jwtSvc := newAuthFixture(t)

	user, token, err := svc.Login(testCtx, "  C1@Example.com ", "hunter2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "c1" {
		t.Fatalf("unexpected user %+v", user)
	}

	identity, err := jwtSvc.ResolveIdentity(token)
	if err != nil {
		t.Fatalf("expected resolvable token, got %v", err)
	}
	if identity.UserID != "c1" || identity.Role != domain.RoleClient {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestAuthServiceLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, _, err := svc.Login(testCtx, "c1@example.com", "nope"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthServiceLogin_UnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, _, err := svc.Login(testCtx, "ghost@example.com", "hunter2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthServiceLogin_EmptyInput(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, _, err := svc.Login(testCtx, "", "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.Login(testCtx, "c1@example.com", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
