package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
)

// Токены выпускает внешний сервис идентификации; здесь они только проверяются.
// Issue нужен для локальной разработки (shiftctl token) и тестов.

var ErrInvalidToken = errors.New("токен невалиден")

// Claims - содержимое access токена: sub, role и org для сотрудников организации.
type Claims struct {
	Role           string `json:"role"`
	OrganizationID string `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager проверяет и выпускает HS256 токены.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(actor entity.Actor) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if actor.OrganizationID != uuid.Nil {
		claims.OrganizationID = actor.OrganizationID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ParseAccess возвращает вызывающего пользователя из access токена.
func (m *TokenManager) ParseAccess(token string) (entity.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return entity.Actor{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return entity.Actor{}, ErrInvalidToken
	}
	role := entity.Role(claims.Role)
	if !role.IsValid() {
		return entity.Actor{}, ErrInvalidToken
	}

	actor := entity.Actor{UserID: userID, Role: role}
	if role == entity.RoleOrganization {
		orgID, err := uuid.Parse(claims.OrganizationID)
		if err != nil {
			return entity.Actor{}, ErrInvalidToken
		}
		actor.OrganizationID = orgID
	}
	return actor, nil
}
