package curricula

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"path"
	"path/filepath"

	"cvquery-backend/internal/extract"
	"cvquery-backend/internal/shared/storage/object"
	"cvquery-backend/internal/shared/telemetry"
	"cvquery-backend/internal/shared/util"
)

// Archive keeps the uploaded originals in an object store, keyed by a
// hashed user prefix and the request ID. Archiving is best-effort: any
// failure is logged and the request proceeds.
type Archive struct {
	store object.ObjectStore
}

// NewArchive wraps an object store. A nil store yields a nil archive,
// which disables archiving.
func NewArchive(store object.ObjectStore) *Archive {
	if store == nil {
		return nil
	}
	return &Archive{store: store}
}

// Store saves every uploaded file under <user-hash>/<request-id>/<name>.
func (a *Archive) Store(ctx context.Context, userID, requestID string, files []extract.File) {
	if a == nil {
		return
	}
	prefix := path.Join(util.HashUserKey(userID), requestID)
	for _, f := range files {
		name, err := util.SanitizeFileName(f.Name)
		if err != nil {
			telemetry.Warn("archive.skip", map[string]any{
				"request_id": requestID,
				"file":       f.Name,
				"error":      sanitizeError(err),
			})
			continue
		}
		key := path.Join(prefix, name)
		if _, err := a.store.Save(ctx, key, detectContentType(name, f.Data), bytes.NewReader(f.Data)); err != nil {
			telemetry.Warn("archive.save_failed", map[string]any{
				"request_id": requestID,
				"file":       name,
				"error":      sanitizeError(err),
			})
		}
	}
}

func detectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
