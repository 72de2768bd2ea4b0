package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"support-chat/internal/domain"
)

// JWTService emite y valida los access tokens que llevan la identidad
// (userId + role) de cada request.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	issuer    string
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, accessTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    "support-chat",
	}
}

func (s *JWTService) GenerateToken(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ResolveIdentity valida el token y devuelve la identidad que transporta.
func (s *JWTService) ResolveIdentity(tokenString string) (domain.Identity, error) {
	if len(s.secret) == 0 {
		return domain.Identity{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return domain.Identity{}, ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrJWTExpired
		}
		return domain.Identity{}, ErrJWTInvalid
	}

	identity := domain.Identity{UserID: claims.UserID, Role: claims.Role}
	if identity.UserID == "" || (!identity.IsClient() && !identity.IsSupport()) {
		return domain.Identity{}, ErrJWTInvalid
	}
	return identity, nil
}
