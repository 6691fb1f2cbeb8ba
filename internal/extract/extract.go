package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cvquery-backend/internal/ocr"
)

// File is one uploaded file held in memory for the duration of a request.
type File struct {
	Name string
	Data []byte
}

// Extractor turns a batch of uploaded files into per-file text. The operation
// is total: a file that cannot be processed maps to an error-marker string,
// never an error for the whole batch.
type Extractor interface {
	Extract(ctx context.Context, files []File) map[string]string
}

// Service implements Extractor with suffix dispatch: document formats are
// parsed directly, anything else is sent to the image OCR backend.
type Service struct {
	Images ocr.ImageRecognizer
}

// NewService constructs an extraction service. Images may be nil, in which
// case image files degrade to error markers.
func NewService(images ocr.ImageRecognizer) *Service {
	return &Service{Images: images}
}

// Extract processes every file independently and returns a map keyed by the
// original filenames.
func (s *Service) Extract(ctx context.Context, files []File) map[string]string {
	texts := make(map[string]string, len(files))
	for _, f := range files {
		text, err := s.extractOne(ctx, f)
		if err != nil {
			texts[f.Name] = fmt.Sprintf("failed to process file: %v", err)
			continue
		}
		texts[f.Name] = text
	}
	return texts
}

func (s *Service) extractOne(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".pdf":
		return extractPDF(f.Data)
	case ".docx":
		return extractDOCX(f.Data)
	default:
		if s.Images == nil {
			return "", fmt.Errorf("image OCR backend not configured")
		}
		return s.Images.Recognize(ctx, f.Name, f.Data)
	}
}
