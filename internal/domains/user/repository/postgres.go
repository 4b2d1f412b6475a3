package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/domains/user"
	"bookshelf-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) user.Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, username, password_hash, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			if constraint == "users_username_key" {
				return user.ErrUsernameTaken
			}
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *postgresRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, bool, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE email = $1),
			EXISTS (SELECT 1 FROM users WHERE username = $2)
	`
	var emailTaken, usernameTaken bool
	if err := r.db.QueryRow(ctx, query, email, username).Scan(&emailTaken, &usernameTaken); err != nil {
		return false, false, fmt.Errorf("check user exists: %w", err)
	}
	return emailTaken, usernameTaken, nil
}

func (r *postgresRepository) scanOne(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
