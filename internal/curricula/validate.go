package curricula

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Limits bounds one upload batch.
type Limits struct {
	MaxFiles          int
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

// DefaultLimits mirrors the production configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:          10,
		MaxFileSizeBytes:  10 << 20,
		AllowedExtensions: []string{".pdf", ".docx", ".jpg", ".jpeg", ".png"},
	}
}

// ValidateFiles checks an upload batch against the limits before any file
// content is read. All violations wrap ErrValidation.
func ValidateFiles(files []*multipart.FileHeader, limits Limits) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: at least one file is required", ErrValidation)
	}
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		return fmt.Errorf("%w: too many files (%d, maximum %d)", ErrValidation, len(files), limits.MaxFiles)
	}

	allowed := make(map[string]bool, len(limits.AllowedExtensions))
	for _, ext := range limits.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = true
	}

	for _, header := range files {
		name := strings.TrimSpace(header.Filename)
		if name == "" {
			return fmt.Errorf("%w: file name is required", ErrValidation)
		}
		if len(allowed) > 0 {
			ext := strings.ToLower(filepath.Ext(name))
			if !allowed[ext] {
				return fmt.Errorf("%w: unsupported file type %q for %s", ErrValidation, ext, name)
			}
		}
		if limits.MaxFileSizeBytes > 0 && header.Size > limits.MaxFileSizeBytes {
			return fmt.Errorf("%w: file %s exceeds the %d byte limit", ErrValidation, name, limits.MaxFileSizeBytes)
		}
	}
	return nil
}
