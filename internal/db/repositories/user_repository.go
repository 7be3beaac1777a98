// Package repositories implements the data access layer. Handlers never issue
// SQL directly; all database access goes through this package, which keeps
// query logic testable in isolation.
package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// UserRepository handles the user queries needed for authentication. User
// mutations go through TrackedRepository so they are audited.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByEmail retrieves a user by email, case-insensitively. It returns
// nil, nil when no user matches.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE LOWER(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID. It returns nil, nil when no user matches.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
