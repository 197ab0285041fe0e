package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcycle/taskcycle-api/internal/config"
)

const testSecret = "test-secret-key-thirty-two-chars-ok"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:          testSecret,
		TokenLifetimeHours: 24,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		cfg := testAuthConfig()
		cfg.JWTSecret = "too-short"
		svc, err := NewJWTService(cfg)
		require.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("zero lifetime", func(t *testing.T) {
		t.Parallel()
		cfg := testAuthConfig()
		cfg.TokenLifetimeHours = 0
		svc, err := NewJWTService(cfg)
		require.Error(t, err)
		assert.Nil(t, svc)
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, time.Minute)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	impl := &hmacJWTService{
		signingKey:    []byte(testSecret),
		tokenLifetime: time.Hour,
		timeFunc:      time.Now,
	}

	// Issue a token in the past, beyond lifetime plus clock skew.
	issuedAt := time.Now().Add(-2 * time.Hour)
	impl.timeFunc = func() time.Time { return issuedAt }
	token, err := impl.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	impl.timeFunc = time.Now
	_, err = impl.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WithinClockSkew(t *testing.T) {
	t.Parallel()

	impl := &hmacJWTService{
		signingKey:    []byte(testSecret),
		tokenLifetime: time.Hour,
		timeFunc:      time.Now,
	}

	// Expired one minute ago, within the two minute leeway.
	issuedAt := time.Now().Add(-61 * time.Minute)
	impl.timeFunc = func() time.Time { return issuedAt }
	token, err := impl.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	impl.timeFunc = time.Now
	_, err = impl.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestValidateToken_Invalid(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
		_, err := svc.ValidateToken(context.Background(), tampered)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "another-secret-key-thirty-two-chars"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)
		_, err = other.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
