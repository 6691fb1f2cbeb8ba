package curricula

import "context"

// Repo persists analysis records.
//
// Save upserts by request ID: writing an existing ID replaces the record.
// Durable implementations absorb backend unavailability on Save and
// ListByUser (logged, never surfaced) so that observability failures
// cannot break a request that already produced a result.
type Repo interface {
	Save(ctx context.Context, record AnalysisRecord) error
	GetByRequestID(ctx context.Context, requestID string) (AnalysisRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error)
}
