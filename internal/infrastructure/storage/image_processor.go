package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const DefaultMaxCoverSize = 5 * 1024 * 1024

var ErrInvalidImage = errors.New("invalid cover image")

// CoverVariant là một kích thước được sinh ra cho mỗi ảnh bìa
type CoverVariant struct {
	Name string
	Size int
}

// CoverVariants theo thứ tự lớn → nhỏ; "medium" là URL được lưu vào books.cover_image_url
var CoverVariants = []CoverVariant{
	{Name: "large", Size: 1200},
	{Name: "medium", Size: 600},
	{Name: "thumbnail", Size: 300},
}

type ImageProcessor struct {
	MaxSize int64
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: DefaultMaxCoverSize}
}

// ValidateImage chỉ chấp nhận JPEG/PNG không vượt quá MaxSize
func (p *ImageProcessor) ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("%w: exceeds %dMB", ErrInvalidImage, p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if format != "jpeg" && format != "png" {
		return fmt.Errorf("%w: format %s not allowed", ErrInvalidImage, format)
	}
	return nil
}

// ProcessImage resizes into every CoverVariant and encodes JPEG quality 90.
// Images smaller than a variant are not upscaled.
func (p *ImageProcessor) ProcessImage(data []byte) (map[string][]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	out := make(map[string][]byte, len(CoverVariants))
	for _, v := range CoverVariants {
		resized := imaging.Fit(img, v.Size, v.Size, imaging.Lanczos)
		buf := new(bytes.Buffer)
		if err := imaging.Encode(buf, resized, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
			return nil, fmt.Errorf("encode %s: %w", v.Name, err)
		}
		out[v.Name] = buf.Bytes()
	}
	return out, nil
}
