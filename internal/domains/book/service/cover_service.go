package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/infrastructure/metrics"
	"bookshelf-backend/internal/infrastructure/storage"
)

// StoredCoverVariant là variant được ghi vào books.cover_image_url
const StoredCoverVariant = "medium"

type coverService struct {
	repo       repository.RepositoryInterface
	storage    storage.ObjectStore
	processor  *storage.ImageProcessor
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func NewCoverService(
	repo repository.RepositoryInterface,
	objectStore storage.ObjectStore,
	processor *storage.ImageProcessor,
	m *metrics.Metrics,
) CoverServiceInterface {
	return &coverService{
		repo:       repo,
		storage:    objectStore,
		processor:  processor,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		metrics:    m,
	}
}

// MirrorCover tải ảnh bìa, resize thành các variant, upload lên MinIO
// (covers/{book_id}/{variant}.jpg) rồi trỏ cover_image_url về variant medium.
func (s *coverService) MirrorCover(ctx context.Context, bookID uuid.UUID, sourceURL string) (string, error) {
	data, err := s.download(ctx, sourceURL)
	if err != nil {
		s.metrics.RecordCoverMirror("download_failed")
		return "", err
	}

	if err := s.processor.ValidateImage(data); err != nil {
		s.metrics.RecordCoverMirror("invalid")
		return "", err
	}

	variants, err := s.processor.ProcessImage(data)
	if err != nil {
		s.metrics.RecordCoverMirror("invalid")
		return "", err
	}

	var storedURL string
	for _, v := range storage.CoverVariants {
		key := fmt.Sprintf("covers/%s/%s.jpg", bookID, v.Name)
		url, err := s.storage.Upload(ctx, key, variants[v.Name], "image/jpeg")
		if err != nil {
			s.metrics.RecordCoverMirror("upload_failed")
			return "", err
		}
		if v.Name == StoredCoverVariant {
			storedURL = url
		}
	}

	if err := s.repo.UpdateCoverURL(ctx, bookID, storedURL); err != nil {
		s.metrics.RecordCoverMirror("update_failed")
		return "", err
	}

	s.metrics.RecordCoverMirror("success")
	log.Info().
		Str("book_id", bookID.String()).
		Str("cover_url", storedURL).
		Msg("Book cover mirrored")
	return storedURL, nil
}

func (s *coverService) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", storage.ErrInvalidImage, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch cover: HTTP %d", resp.StatusCode)
	}

	// Đọc quá MaxSize 1 byte để ValidateImage phát hiện file quá lớn
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.processor.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}
	return data, nil
}
