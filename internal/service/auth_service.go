package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"support-chat/internal/domain"
	"support-chat/internal/repository"
)

// AuthService resuelve credenciales email+password en un token de acceso.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	jwt    *JWTService
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, jwt *JWTService) *AuthService {
	return &AuthService{logger: logger, users: users, jwt: jwt}
}

// Login verifica las credenciales y devuelve el usuario con su token.
// Credenciales malas y usuarios desconocidos responden igual: ErrForbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, "", ErrForbidden
	}
	if err != nil {
		return domain.User{}, "", storeError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", ErrForbidden
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		s.logger.Error("token generation failed", zap.String("user_id", user.ID), zap.Error(err))
		return domain.User{}, "", err
	}
	return user, token, nil
}
