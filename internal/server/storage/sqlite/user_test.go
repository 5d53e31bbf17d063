package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := &models.User{
		Username:     "testuser1",
		Email:        "testuser1@example.com",
		PasswordHash: "bcrypt-hash",
		CreatedAt:    time.Now(),
	}

	id, err := s.CreateUser(ctx, user)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Verify user was created
	retrieved, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.Username, retrieved.Username)
	assert.Equal(t, user.Email, retrieved.Email)
	assert.Equal(t, user.PasswordHash, retrieved.PasswordHash)
}

func TestUserStorage_CreateUser_Duplicates(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := &models.User{
		Username:     "duplicate",
		Email:        "duplicate@example.com",
		PasswordHash: "hash1",
		CreatedAt:    time.Now(),
	}
	_, err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	// Тот же username, другой email
	_, err = s.CreateUser(ctx, &models.User{
		Username:     "duplicate",
		Email:        "other@example.com",
		PasswordHash: "hash2",
		CreatedAt:    time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	// Тот же email, другой username
	_, err = s.CreateUser(ctx, &models.User{
		Username:     "someoneelse",
		Email:        "duplicate@example.com",
		PasswordHash: "hash3",
		CreatedAt:    time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "byemail")

	user, err := s.GetUserByEmail(ctx, "byemail@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "byemail", user.Username)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_GetUserByID_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetUserByID(ctx, 99999)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_UserExists(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestUser(t, ctx, s, "existing")

	tests := []struct {
		name     string
		username string
		email    string
		want     bool
	}{
		{name: "both match", username: "existing", email: "existing@example.com", want: true},
		{name: "username matches", username: "existing", email: "new@example.com", want: true},
		{name: "email matches", username: "newuser", email: "existing@example.com", want: true},
		{name: "neither matches", username: "newuser", email: "new@example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := s.UserExists(ctx, tt.username, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}
