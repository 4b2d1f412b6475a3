package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"bookshelf-backend/internal/domains/post"
	"bookshelf-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) post.Repository {
	return &postgresRepository{db: db}
}

const postColumns = `id, user_id, title, content, tags, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *post.Post) error {
	query := `
		INSERT INTO posts (id, user_id, title, content, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.UserID, p.Title, p.Content, pq.Array(nonNil(p.Tags)), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, post.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *post.Post) error {
	query := `
		UPDATE posts SET title = $2, content = $3, tags = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Title, p.Content, pq.Array(nonNil(p.Tags)), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, f post.ListFilter) ([]post.Post, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Skip)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]post.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	var tags []string
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, pq.Array(&tags), &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Tags = nonNil(tags)
	return &p, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
