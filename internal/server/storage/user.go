package storage

import (
	"context"

	"github.com/iudanet/imagesight/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user and returns its generated ID
	// Returns ErrUserAlreadyExists if username or email is taken
	CreateUser(ctx context.Context, user *models.User) (int64, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	// UserExists reports whether a user with the given username or email exists
	UserExists(ctx context.Context, username, email string) (bool, error)
}
