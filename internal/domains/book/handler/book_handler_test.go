package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
)

type stubService struct {
	created bool
	err     error
	filter  model.SearchFilter
}

func (s *stubService) CreateBook(_ context.Context, req model.CreateBookRequest, _ *uuid.UUID) (*model.CreateBookResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.CreateBookResponse{Book: model.BookResponse{ID: uuid.New(), Title: req.Title}, Created: s.created}, nil
}

func (s *stubService) GetBook(_ context.Context, id uuid.UUID) (*model.BookResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.BookResponse{ID: id, Title: "Dune"}, nil
}

func (s *stubService) Exists(context.Context, uuid.UUID) (bool, error) { return s.err == nil, s.err }

func (s *stubService) UpdateBook(_ context.Context, id uuid.UUID, _ model.UpdateBookRequest) (*model.BookResponse, error) {
	return s.GetBook(context.Background(), id)
}

func (s *stubService) DeleteBook(_ context.Context, id uuid.UUID) (*model.DeleteBookResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.DeleteBookResponse{ID: id, Deleted: true}, nil
}

func (s *stubService) ListBooks(context.Context, int, int) ([]model.BookResponse, int, error) {
	return []model.BookResponse{}, 0, s.err
}

func (s *stubService) ListByAuthor(context.Context, uuid.UUID, int, int) ([]model.BookResponse, error) {
	return []model.BookResponse{}, s.err
}

func (s *stubService) AutocompleteTitles(context.Context, string, int) ([]string, error) {
	return []string{"Dune"}, s.err
}

func (s *stubService) SearchByTitle(context.Context, string, int) ([]model.BookResponse, error) {
	return []model.BookResponse{}, s.err
}

func (s *stubService) SearchBooks(_ context.Context, f model.SearchFilter) ([]model.BookResponse, error) {
	s.filter = f
	return []model.BookResponse{}, s.err
}

func (s *stubService) ExportBooksToExcel(context.Context, model.SearchFilter) (*excelize.File, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "ID")
	return f, 0, nil
}

type stubImporter struct {
	body   string
	result *model.ImportResult
	err    error
}

func (s *stubImporter) ImportBooks(_ context.Context, r io.Reader, _ *uuid.UUID) (*model.ImportResult, error) {
	data, _ := io.ReadAll(r)
	s.body = string(data)
	return s.result, s.err
}

func newRouter(svc *stubService, imp *stubImporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, imp)
	r := gin.New()
	r.GET("/api/books/titles/autocomplete", h.Autocomplete)
	r.GET("/api/books/search-by-title", h.SearchByTitle)
	r.GET("/api/books/search", h.SearchBooks)
	r.GET("/api/books/export", h.ExportBooks)
	r.POST("/api/books/import", h.ImportBooks)
	r.POST("/api/books", h.CreateBook)
	r.GET("/api/books/:id", h.GetBook)
	r.DELETE("/api/books/:id", h.DeleteBook)
	r.GET("/api/authors/:id/books", h.ListByAuthor)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBook_StatusCodes(t *testing.T) {
	body := map[string]any{"title": "Dune", "author_id": uuid.NewString()}

	tests := []struct {
		name string
		svc  *stubService
		want int
	}{
		{"created", &stubService{created: true}, http.StatusCreated},
		{"existing title", &stubService{}, http.StatusOK},
		{"author missing", &stubService{err: model.ErrAuthorNotFound}, http.StatusNotFound},
		{"duplicate isbn", &stubService{err: model.ErrDuplicateISBN}, http.StatusConflict},
		{"title race", &stubService{err: model.ErrDuplicateTitle}, http.StatusConflict},
		{"store down", &stubService{err: &dedup.StoreError{Op: "find", Err: errors.New("down")}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(newRouter(tt.svc, &stubImporter{}), http.MethodPost, "/api/books", body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	id := uuid.NewString()

	w := doJSON(newRouter(&stubService{}, nil), http.MethodGet, "/api/books/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(newRouter(&stubService{err: model.ErrBookNotFound}, nil), http.MethodGet, "/api/books/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(newRouter(&stubService{}, nil), http.MethodGet, "/api/books/bad-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(newRouter(&stubService{}, nil), http.MethodDelete, "/api/books/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(newRouter(&stubService{err: model.ErrAuthorNotFound}, nil), http.MethodGet, "/api/authors/"+id+"/books", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEndpoints(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, nil)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/api/books/titles/autocomplete", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/books/titles/autocomplete?q=du", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/api/books/search-by-title?q=", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/api/books/search?author_id=zzz", nil).Code)

	authorID := uuid.New()
	w := doJSON(r, http.MethodGet, "/api/books/search?q=dune&genre=sci&author_id="+authorID.String()+"&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dune", svc.filter.Query)
	assert.Equal(t, "sci", svc.filter.Genre)
	require.NotNil(t, svc.filter.AuthorID)
	assert.Equal(t, authorID, *svc.filter.AuthorID)
	assert.Equal(t, 5, svc.filter.Limit)
}

func TestExportBooks_WritesXLSX(t *testing.T) {
	w := doJSON(newRouter(&stubService{}, nil), http.MethodGet, "/api/books/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", v)
}

func TestImportBooks(t *testing.T) {
	imp := &stubImporter{result: &model.ImportResult{TotalRows: 1, CreatedBooks: 1}}
	r := newRouter(&stubService{}, imp)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "books.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("title,author_name\nDune,Frank Herbert\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, imp.body, "Frank Herbert")

	// thiếu file
	w = doJSON(r, http.MethodPost, "/api/books/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
