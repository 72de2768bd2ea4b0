package service

import (
	"errors"
	"testing"
	"time"

	"support-chat/internal/domain"
)

func TestJWTServiceRoundtrip(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	token, err := svc.GenerateToken(domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	identity, err := svc.ResolveIdentity(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if identity.UserID != "u1" || identity.Role != domain.RoleClient {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestJWTServiceRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Minute).GenerateToken(domain.User{ID: "u1", Role: domain.RoleSupport})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := NewJWTService("secret-b", time.Minute).ResolveIdentity(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	svc.accessTTL = -time.Minute
	token, err := svc.GenerateToken(domain.User{ID: "u1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResolveIdentity(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTServiceRejectsUnknownRole(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	token, err := svc.GenerateToken(domain.User{ID: "u1", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResolveIdentity(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for unknown role, got %v", err)
	}
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	for _, token := range []string{"", "   ", "not-a-token"} {
		if _, err := svc.ResolveIdentity(token); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("token %q: expected ErrJWTInvalid, got %v", token, err)
		}
	}
}
