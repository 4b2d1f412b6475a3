package model

import (
	"errors"
	"fmt"

	"bookshelf-backend/internal/dedup"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrDuplicateISBN  = errors.New("a book with this ISBN already exists")
	ErrInvalidTitle   = errors.New("book title is invalid")

	// ErrDuplicateTitle: (author_id, title_key) đã tồn tại
	ErrDuplicateTitle = fmt.Errorf("title already exists for this author: %w", dedup.ErrUniquenessViolation)

	// Import
	ErrInvalidImportFile = errors.New("invalid import file")
)
