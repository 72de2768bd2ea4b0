package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"support-chat/internal/domain"
)

func TestAuthAPI_Login(t *testing.T) {
	f := newAPIFixture(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	f.users.users["c1"] = domain.User{
		ID:           "c1",
		Email:        "c1@example.com",
		Role:         domain.RoleClient,
		PasswordHash: string(hash),
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "c1@example.com", "password": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "c1" || resp.Role != domain.RoleClient || resp.Token == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	// El token emitido sirve para la API autenticada.
	listRec := f.do(t, http.MethodGet, "/api/threads", resp.Token, nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 with issued token, got %d", listRec.Code)
	}
}

func TestAuthAPI_LoginRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "c1@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "not-an-email", "password": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
