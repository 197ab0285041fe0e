package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskcycle/taskcycle-api/internal/config"
)

// allowedClockSkew bounds tolerated clock drift between token issuer and
// validator when checking expiry.
const allowedClockSkew = 2 * time.Minute

// hmacJWTService implements JWTService using HMAC-SHA256 signing.
type hmacJWTService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// jwtCustomClaims is the wire format of the token payload.
type jwtCustomClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// NewJWTService creates a JWTService backed by HMAC-SHA256 with the secret
// and token lifetime from the auth configuration.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 characters")
	}
	if cfg.TokenLifetimeHours <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	return &hmacJWTService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Duration(cfg.TokenLifetimeHours) * time.Hour,
		timeFunc:      time.Now,
	}, nil
}

// GenerateToken creates a signed access token for the user.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to sign token",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a token string, returning the claims
// when the token is authentic and unexpired.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parsedClaims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		parsedClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(allowedClockSkew),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if parsedClaims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:  parsedClaims.UserID,
		Subject: parsedClaims.Subject,
		ID:      parsedClaims.ID,
	}
	if parsedClaims.IssuedAt != nil {
		claims.IssuedAt = parsedClaims.IssuedAt.Time
	}
	if parsedClaims.ExpiresAt != nil {
		claims.ExpiresAt = parsedClaims.ExpiresAt.Time
	}

	return claims, nil
}
