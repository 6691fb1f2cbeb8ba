package ocr

import "context"

// ImageRecognizer abstracts image OCR backends.
type ImageRecognizer interface {
	Recognize(ctx context.Context, fileName string, data []byte) (string, error)
}
