package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/author"
	"bookshelf-backend/internal/domains/book/model"
)

// MaxImportRows giới hạn số dòng dữ liệu của một file import
const MaxImportRows = 1000

type importService struct {
	books   ServiceInterface
	authors AuthorResolver
}

func NewImportService(books ServiceInterface, authors AuthorResolver) ImportServiceInterface {
	return &importService{books: books, authors: authors}
}

// ImportBooks xử lý tuần tự từng dòng. Lỗi của một dòng được ghi vào result;
// lỗi store (Postgres down) dừng cả lần import.
func (s *importService) ImportBooks(ctx context.Context, r io.Reader, userID *uuid.UUID) (*model.ImportResult, error) {
	rows, err := parseCSV(r)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{
		TotalRows: len(rows),
		Books:     make([]model.ImportedBook, 0, len(rows)),
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		imported, rowErr := s.importRow(ctx, row, userID)
		if rowErr != nil {
			if isStoreFailure(rowErr) {
				return nil, rowErr
			}
			result.FailedRows++
			result.Errors = append(result.Errors, toRowError(row.Row, rowErr))
			continue
		}

		result.Books = append(result.Books, *imported)
		if imported.Created {
			result.CreatedBooks++
		} else {
			result.ExistingBooks++
		}
		if imported.AuthorCreated {
			result.CreatedAuthors++
		}
	}

	log.Info().
		Int("total_rows", result.TotalRows).
		Int("created_books", result.CreatedBooks).
		Int("existing_books", result.ExistingBooks).
		Int("created_authors", result.CreatedAuthors).
		Int("failed_rows", result.FailedRows).
		Msg("[BookImport] Import completed")

	return result, nil
}

func (s *importService) importRow(ctx context.Context, row model.CSVBookRow, userID *uuid.UUID) (*model.ImportedBook, error) {
	if strings.TrimSpace(row.Title) == "" {
		return nil, validation.Errors{"title": validation.ErrRequired}
	}

	a, authorCreated, err := s.authors.FindOrCreate(ctx, row.AuthorName, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.books.CreateBook(ctx, model.CreateBookRequest{
		Title:           row.Title,
		AuthorID:        a.ID,
		ISBN:            row.ISBN,
		Genre:           row.Genre,
		Description:     row.Description,
		CoverImageURL:   row.CoverImageURL,
		PublicationYear: row.PublicationYear,
	}, userID)
	if err != nil {
		return nil, err
	}

	return &model.ImportedBook{
		Row:           row.Row,
		BookID:        resp.Book.ID,
		Title:         resp.Book.Title,
		AuthorID:      a.ID,
		AuthorName:    a.Name,
		Created:       resp.Created,
		AuthorCreated: authorCreated,
	}, nil
}

// ============================================
// CSV PARSING
// ============================================

func parseCSV(r io.Reader) ([]model.CSVBookRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", model.ErrInvalidImportFile)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImportFile, err)
	}

	colMap := buildColumnIndexMap(header)
	for _, required := range []string{"title", "author_name"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrInvalidImportFile, required)
		}
	}

	var rows []model.CSVBookRow
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", model.ErrInvalidImportFile, rowNum, err)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(rows) == MaxImportRows {
			return nil, fmt.Errorf("%w: more than %d rows", model.ErrInvalidImportFile, MaxImportRows)
		}
		rows = append(rows, parseCSVRow(record, colMap, rowNum))
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", model.ErrInvalidImportFile)
	}
	return rows, nil
}

// buildColumnIndexMap tạo map từ column name → index
func buildColumnIndexMap(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for i, colName := range header {
		colName = strings.TrimPrefix(colName, "\ufeff") // BOM của Excel
		colMap[strings.TrimSpace(strings.ToLower(colName))] = i
	}
	return colMap
}

func parseCSVRow(record []string, colMap map[string]int, rowNum int) model.CSVBookRow {
	getCol := func(name string) string {
		if idx, ok := colMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
	optional := func(name string) *string {
		if v := getCol(name); v != "" {
			return &v
		}
		return nil
	}

	row := model.CSVBookRow{
		Row:           rowNum,
		Title:         getCol("title"),
		AuthorName:    getCol("author_name"),
		ISBN:          optional("isbn"),
		Genre:         optional("genre"),
		Description:   optional("description"),
		CoverImageURL: optional("cover_image_url"),
	}

	// Năm không parse được thì bỏ qua thay vì fail cả dòng
	if val := getCol("publication_year"); val != "" {
		if year, err := strconv.Atoi(val); err == nil {
			row.PublicationYear = &year
		}
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ============================================
// ERRORS
// ============================================

func isStoreFailure(err error) bool {
	if errors.Is(err, dedup.ErrStoreUnavailable) {
		return true
	}
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, dedup.ErrInvalidInput),
		errors.Is(err, author.ErrInvalidName),
		errors.Is(err, model.ErrInvalidTitle),
		errors.Is(err, model.ErrDuplicateISBN),
		errors.Is(err, model.ErrAuthorNotFound):
		return false
	}
	return true
}

func toRowError(row int, err error) model.ImportRowError {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		if len(verrs) == 1 {
			for field, fieldErr := range verrs {
				return model.ImportRowError{Row: row, Field: field, Message: fieldErr.Error()}
			}
		}
		return model.ImportRowError{Row: row, Message: verrs.Error()}
	}

	switch {
	case errors.Is(err, author.ErrInvalidName), errors.Is(err, dedup.ErrInvalidInput):
		return model.ImportRowError{Row: row, Field: "author_name", Message: "author name is required"}
	case errors.Is(err, model.ErrDuplicateISBN):
		return model.ImportRowError{Row: row, Field: "isbn", Message: err.Error()}
	}
	return model.ImportRowError{Row: row, Message: err.Error()}
}
