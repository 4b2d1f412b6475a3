package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/domains/profile"
	"bookshelf-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) profile.Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `id, user_id, first_name, last_name, dob, address, city, state,
	zip_code, country, phone, bio, preferences, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO user_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.FirstName, p.LastName, p.DOB, p.Address, p.City, p.State,
		p.ZipCode, p.Country, p.Phone, p.Bio, preferencesOrEmpty(p.Preferences), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return profile.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`

	var p profile.Profile
	var prefs []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.DOB, &p.Address, &p.City, &p.State,
		&p.ZipCode, &p.Country, &p.Phone, &p.Bio, &prefs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.Preferences = prefs
	return &p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE user_profiles SET
			first_name = $2, last_name = $3, dob = $4, address = $5, city = $6, state = $7,
			zip_code = $8, country = $9, phone = $10, bio = $11, preferences = $12, updated_at = $13
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.UserID, p.FirstName, p.LastName, p.DOB, p.Address, p.City, p.State,
		p.ZipCode, p.Country, p.Phone, p.Bio, preferencesOrEmpty(p.Preferences), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}

func preferencesOrEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte(`{}`)
	}
	return raw
}
