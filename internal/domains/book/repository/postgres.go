package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/pkg/database"
)

// postgresRepository - raw SQL trên database.DBTX (pgxpool hoặc tx)
type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

const bookWithAuthorColumns = `
	b.id, b.title, b.title_key, b.author_id, b.isbn, b.genre, b.description,
	b.cover_image_url, b.publication_year, b.created_by, b.created_at, b.updated_at,
	a.name
`

const bookFromJoin = `FROM books b JOIN authors a ON a.id = b.author_id`

// ============================================
// TITLE DEDUP SOURCE
// ============================================

type titleSource struct {
	db       database.DBTX
	authorID uuid.UUID
}

func (r *postgresRepository) TitleSource(authorID uuid.UUID) dedup.Source {
	return &titleSource{db: r.db, authorID: authorID}
}

func (s *titleSource) FindByMatchKey(ctx context.Context, matchKey string) (*dedup.NamedEntity, error) {
	query := `SELECT id, title, title_key, created_at FROM books WHERE author_id = $1 AND title_key = $2`

	var e dedup.NamedEntity
	err := s.db.QueryRow(ctx, query, s.authorID, matchKey).Scan(&e.ID, &e.DisplayForm, &e.MatchKey, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dedup.ErrNotFound
		}
		return nil, fmt.Errorf("find title by key: %w", err)
	}
	return &e, nil
}

func (s *titleSource) ListCandidates(ctx context.Context) ([]dedup.NamedEntity, error) {
	query := `SELECT id, title, title_key, created_at FROM books WHERE author_id = $1 ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, s.authorID)
	if err != nil {
		return nil, fmt.Errorf("list title candidates: %w", err)
	}
	defer rows.Close()

	var out []dedup.NamedEntity
	for rows.Next() {
		var e dedup.NamedEntity
		if err := rows.Scan(&e.ID, &e.DisplayForm, &e.MatchKey, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan title candidate: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ============================================
// WRITE
// ============================================

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, title_key, author_id, isbn, genre, description,
			cover_image_url, publication_year, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.TitleKey, b.AuthorID, b.ISBN, b.Genre, b.Description,
		b.CoverImageURL, b.PublicationYear, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert book", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books SET
			title = $2, title_key = $3, author_id = $4, isbn = $5, genre = $6,
			description = $7, cover_image_url = $8, publication_year = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.TitleKey, b.AuthorID, b.ISBN, b.Genre,
		b.Description, b.CoverImageURL, b.PublicationYear, b.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update book", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE books SET cover_image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("update cover url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// Delete xóa cứng; reviews bị xóa theo (ON DELETE CASCADE)
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// ============================================
// READ
// ============================================

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	query := `SELECT ` + bookWithAuthorColumns + bookFromJoin + ` WHERE b.id = $1`

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check book exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) AuthorExists(ctx context.Context, authorID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM authors WHERE id = $1)`, authorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check author exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) AutocompleteTitles(ctx context.Context, q string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT title
		FROM books
		WHERE title ILIKE $1
		ORDER BY title
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, database.ContainsPattern(q), limit)
	if err != nil {
		return nil, fmt.Errorf("autocomplete titles: %w", err)
	}
	defer rows.Close()

	titles := make([]string, 0, limit)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (r *postgresRepository) SearchByTitle(ctx context.Context, q string, limit int) ([]model.BookWithAuthor, error) {
	query := `SELECT ` + bookWithAuthorColumns + bookFromJoin + `
		WHERE b.title ILIKE $1
		ORDER BY b.title
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, database.ContainsPattern(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search books by title: %w", err)
	}
	return collectBooks(rows)
}

// Search - các điều kiện q/author_id/genre đều optional, kết hợp bằng AND
func (r *postgresRepository) Search(ctx context.Context, f model.SearchFilter) ([]model.BookWithAuthor, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if f.Query != "" {
		conditions = append(conditions, fmt.Sprintf("b.title ILIKE $%d", argIndex))
		args = append(args, database.ContainsPattern(f.Query))
		argIndex++
	}
	if f.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("b.author_id = $%d", argIndex))
		args = append(args, *f.AuthorID)
		argIndex++
	}
	if f.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("b.genre ILIKE $%d", argIndex))
		args = append(args, database.ContainsPattern(f.Genre))
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY b.title, b.id LIMIT $%d OFFSET $%d`,
		bookWithAuthorColumns, bookFromJoin, where, argIndex, argIndex+1)
	args = append(args, f.Limit, f.Skip)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return collectBooks(rows)
}

func (r *postgresRepository) List(ctx context.Context, limit, skip int) ([]model.BookWithAuthor, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := `SELECT ` + bookWithAuthorColumns + bookFromJoin + `
		ORDER BY b.created_at DESC, b.id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]model.BookWithAuthor, error) {
	query := `SELECT ` + bookWithAuthorColumns + bookFromJoin + `
		WHERE b.author_id = $1
		ORDER BY b.publication_year NULLS LAST, b.title
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, authorID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	return collectBooks(rows)
}

// ============================================
// HELPERS
// ============================================

func mapWriteError(op string, err error) error {
	if constraint, ok := database.UniqueViolation(err); ok {
		if constraint == "books_isbn_unique" {
			return model.ErrDuplicateISBN
		}
		return model.ErrDuplicateTitle
	}
	if database.IsForeignKeyViolation(err) {
		return model.ErrAuthorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanBook(row pgx.Row) (*model.BookWithAuthor, error) {
	var b model.BookWithAuthor
	err := row.Scan(
		&b.ID, &b.Title, &b.TitleKey, &b.AuthorID, &b.ISBN, &b.Genre, &b.Description,
		&b.CoverImageURL, &b.PublicationYear, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		&b.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBooks(rows pgx.Rows) ([]model.BookWithAuthor, error) {
	defer rows.Close()

	books := make([]model.BookWithAuthor, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}
