package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/author"
	"bookshelf-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) author.Repository {
	return &postgresRepository{db: db}
}

const authorColumns = `id, name, name_key, bio, created_by, created_at, updated_at`

// ========================================
// dedup.Source
// ========================================

func (r *postgresRepository) FindByMatchKey(ctx context.Context, matchKey string) (*dedup.NamedEntity, error) {
	query := `SELECT id, name, name_key, created_at FROM authors WHERE name_key = $1`

	var e dedup.NamedEntity
	err := r.db.QueryRow(ctx, query, matchKey).Scan(&e.ID, &e.DisplayForm, &e.MatchKey, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dedup.ErrNotFound
		}
		return nil, fmt.Errorf("find author by key: %w", err)
	}
	return &e, nil
}

// ListCandidates trả về toàn bộ authors cho fuzzy scan (linear)
func (r *postgresRepository) ListCandidates(ctx context.Context) ([]dedup.NamedEntity, error) {
	query := `SELECT id, name, name_key, created_at FROM authors ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list author candidates: %w", err)
	}
	defer rows.Close()

	var out []dedup.NamedEntity
	for rows.Next() {
		var e dedup.NamedEntity
		if err := rows.Scan(&e.ID, &e.DisplayForm, &e.MatchKey, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan author candidate: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author candidates: %w", err)
	}
	return out, nil
}

// ========================================
// CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, a *author.Author) error {
	query := `
		INSERT INTO authors (id, name, name_key, bio, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.NameKey, a.Bio, a.CreatedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return author.ErrDuplicateName
		}
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	a, err := scanAuthor(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("find author: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) Search(ctx context.Context, q string, limit int) ([]author.Author, error) {
	query := `
		SELECT ` + authorColumns + `
		FROM authors
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, database.ContainsPattern(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	return collectAuthors(rows)
}

func (r *postgresRepository) List(ctx context.Context, limit, skip int) ([]author.Author, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	query := `
		SELECT ` + authorColumns + `
		FROM authors
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	authors, err := collectAuthors(rows)
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// ========================================
// HELPERS
// ========================================

func scanAuthor(row pgx.Row) (*author.Author, error) {
	var a author.Author
	if err := row.Scan(&a.ID, &a.Name, &a.NameKey, &a.Bio, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAuthors(rows pgx.Rows) ([]author.Author, error) {
	defer rows.Close()

	authors := make([]author.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return authors, nil
}
