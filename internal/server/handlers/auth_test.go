package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
	"github.com/iudanet/imagesight/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*models.User // email -> User
	nextID      int64
	createError error
	getError    error
	existsError error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, storage.ErrUserAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return user.ID, nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UserExists(ctx context.Context, username, email string) (bool, error) {
	if m.existsError != nil {
		return false, m.existsError
	}
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuthHandler(store *mockUserStorage) *AuthHandler {
	return NewAuthHandler(discardLogger(), store, testJWTCfg())
}

func testJWTCfg() JWTConfig {
	return JWTConfig{
		Secret:   []byte("test-secret-key"),
		TokenTTL: 7 * 24 * time.Hour,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, req)
	return w
}

func TestAuthHandler_Register_Success(t *testing.T) {
	store := newMockUserStorage()
	h := testAuthHandler(store)

	w := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotZero(t, resp.User.ID)

	// Пароль хранится только хешем
	user := store.users["alice@example.com"]
	require.NotNil(t, user)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	// Токен пригоден для валидации
	claims, err := ValidateAccessToken(testJWTCfg(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name        string
		req         api.RegisterRequest
		wantMessage string
	}{
		{
			name:        "missing username",
			req:         api.RegisterRequest{Email: "a@b.com", Password: "secret123"},
			wantMessage: "All fields required",
		},
		{
			name:        "missing email",
			req:         api.RegisterRequest{Username: "alice", Password: "secret123"},
			wantMessage: "All fields required",
		},
		{
			name:        "missing password",
			req:         api.RegisterRequest{Username: "alice", Email: "a@b.com"},
			wantMessage: "All fields required",
		},
		{
			name:        "short password",
			req:         api.RegisterRequest{Username: "alice", Email: "a@b.com", Password: "12345"},
			wantMessage: "Password must be at least 6 characters",
		},
		{
			name:        "invalid email",
			req:         api.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret123"},
			wantMessage: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testAuthHandler(newMockUserStorage())

			w := postJSON(t, h.Register, "/api/auth/register", tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMessage)
		})
	}
}

func TestAuthHandler_Register_DuplicateUser(t *testing.T) {
	store := newMockUserStorage()
	h := testAuthHandler(store)

	first := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, first.Code)

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{
			name: "same username",
			req:  api.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret123"},
		},
		{
			name: "same email",
			req:  api.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "secret123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Register, "/api/auth/register", tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "User already exists")
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	store := newMockUserStorage()
	h := testAuthHandler(store)

	reg := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, reg.Code)

	w := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	store := newMockUserStorage()
	h := testAuthHandler(store)

	reg := postJSON(t, h.Register, "/api/auth/register", api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, reg.Code)

	tests := []struct {
		name string
		req  api.LoginRequest
	}{
		{
			name: "unknown email",
			req:  api.LoginRequest{Email: "ghost@example.com", Password: "secret123"},
		},
		{
			name: "wrong password",
			req:  api.LoginRequest{Email: "alice@example.com", Password: "wrongpass"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Login, "/api/auth/login", tt.req)

			// Неизвестный email и неверный пароль неразличимы для клиента
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid credentials")
		})
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := testAuthHandler(newMockUserStorage())

	w := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{Email: "alice@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email and password required")
}
