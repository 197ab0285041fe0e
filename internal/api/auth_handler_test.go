package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcycle/taskcycle-api/internal/domain"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	jwtService := &stubJWTService{token: "test-token"}
	handler := NewAuthHandler(userStore, jwtService, &stubPasswordVerifier{})

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"email":    "test@example.com",
				"password": "password1234567",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"email":    "invalid-email",
				"password": "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"email":    "test2@example.com",
				"password": "short",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			payload: map[string]interface{}{
				"email": "test3@example.com",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payloadBytes))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Register(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantToken {
				var authResp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
				assert.Equal(t, "test-token", authResp.Token)
				assert.NotEqual(t, "", authResp.UserID.String())
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	handler := NewAuthHandler(userStore, &stubJWTService{token: "t"}, &stubPasswordVerifier{})

	payload := []byte(`{"email":"dup@example.com","password":"password1234567"}`)

	first := httptest.NewRecorder()
	handler.Register(first, httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payload)))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.Register(second, httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payload)))
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	user, err := domain.NewUser("login@example.com", "password1234567")
	require.NoError(t, err)
	user.HashedPassword = "hashed:password1234567"
	user.Password = ""
	require.NoError(t, userStore.Create(context.Background(), user))

	t.Run("valid credentials", func(t *testing.T) {
		handler := NewAuthHandler(userStore, &stubJWTService{token: "login-token"}, &stubPasswordVerifier{})

		payload := []byte(`{"email":"login@example.com","password":"password1234567"}`)
		recorder := httptest.NewRecorder()
		handler.Login(recorder, httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payload)))

		require.Equal(t, http.StatusOK, recorder.Code)
		var authResp AuthResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
		assert.Equal(t, "login-token", authResp.Token)
		assert.Equal(t, user.ID, authResp.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		handler := NewAuthHandler(userStore, &stubJWTService{token: "t"},
			&stubPasswordVerifier{compareErr: assert.AnError})

		payload := []byte(`{"email":"login@example.com","password":"wrong-password-1"}`)
		recorder := httptest.NewRecorder()
		handler.Login(recorder, httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payload)))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		handler := NewAuthHandler(userStore, &stubJWTService{token: "t"}, &stubPasswordVerifier{})

		payload := []byte(`{"email":"nobody@example.com","password":"password1234567"}`)
		recorder := httptest.NewRecorder()
		handler.Login(recorder, httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payload)))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
