package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"bookshelf-backend/internal/domains/book/model"
)

const (
	exportSheetName = "Books"
	MaxExportRows   = 5000
)

var exportHeaders = []string{
	"ID",
	"Title",
	"Author",
	"ISBN",
	"Genre",
	"Publication Year",
	"Description",
	"Cover URL",
	"Created At",
}

// ExportBooksToExcel dùng cùng filter với search, tối đa MaxExportRows dòng
func (s *BookService) ExportBooksToExcel(ctx context.Context, filter model.SearchFilter) (*excelize.File, int, error) {
	filter.Skip = 0
	if filter.Limit <= 0 || filter.Limit > MaxExportRows {
		filter.Limit = MaxExportRows
	}

	books, err := s.SearchBooks(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}

	f, err := buildBooksExcelFile(books)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, len(books), nil
}

func buildBooksExcelFile(books []model.BookResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// Row 1: Header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", lastCol, headerStyle)
	}

	// Data rows, bắt đầu từ row 2
	for i, b := range books {
		row := []interface{}{
			b.ID.String(),
			b.Title,
			b.Author.Name,
			derefString(b.ISBN),
			derefString(b.Genre),
			derefInt(b.PublicationYear),
			derefString(b.Description),
			derefString(b.CoverImageURL),
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func derefString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
