package curricula

import (
	"errors"
	"mime/multipart"
	"testing"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateFilesAcceptsAllowedBatch(t *testing.T) {
	files := []*multipart.FileHeader{
		header("cv.pdf", 1024),
		header("cv.docx", 2048),
		header("scan.JPG", 512),
	}
	if err := ValidateFiles(files, DefaultLimits()); err != nil {
		t.Fatalf("ValidateFiles: %v", err)
	}
}

func TestValidateFilesRejectsEmptyBatch(t *testing.T) {
	if err := ValidateFiles(nil, DefaultLimits()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateFilesRejectsTooManyFiles(t *testing.T) {
	files := make([]*multipart.FileHeader, 0, 11)
	for i := 0; i < 11; i++ {
		files = append(files, header("cv.pdf", 100))
	}
	if err := ValidateFiles(files, DefaultLimits()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateFilesRejectsUnsupportedExtension(t *testing.T) {
	files := []*multipart.FileHeader{header("resume.exe", 100)}
	if err := ValidateFiles(files, DefaultLimits()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateFilesRejectsOversizedFile(t *testing.T) {
	files := []*multipart.FileHeader{header("cv.pdf", (10<<20)+1)}
	if err := ValidateFiles(files, DefaultLimits()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
