package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. ID and CreatedAt are set by the caller.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, display_name, bio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		u.Bio,
		u.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if strings.Contains(constraint, "email") {
				return model.ErrEmailExists
			}
			return model.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

const userColumns = `id, username, email, password_hash, display_name, bio, created_at`

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *userRepository) getBy(ctx context.Context, column string, value any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateProfile writes display name and bio. A nil bio keeps the stored value.
// The row only counts as affected when something changed.
func (r *userRepository) UpdateProfile(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, displayName string, bio *string) (bool, error) {
	query := `
		UPDATE users
		SET display_name = $2, bio = COALESCE($3, bio)
		WHERE id = $1
		  AND (display_name <> $2 OR ($3 IS NOT NULL AND (bio IS NULL OR bio <> $3)))
	`
	result, err := tx.ExecContext(ctx, query, userID, displayName, bio)
	if err != nil {
		return false, fmt.Errorf("failed to update profile: %w", err)
	}
	return affected(result)
}

// GetProfile returns the public profile for username without the viewer-relative flag.
func (r *userRepository) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users u WHERE u.username = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

func (r *userRepository) GetMainPhotoURL(ctx context.Context, userID uuid.UUID) (*string, error) {
	query := `SELECT url FROM photos WHERE user_id = $1 AND is_main`

	var url string
	err := r.db.GetContext(ctx, &url, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get main photo: %w", err)
	}
	return &url, nil
}
