package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for archiving and retrieving binary objects
// by caller-chosen storage key.
type ObjectStore interface {
	Save(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
