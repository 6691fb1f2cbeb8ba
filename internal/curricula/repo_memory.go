package curricula

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores records in memory and is safe for concurrent use.
// It is the development and test backend.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]AnalysisRecord
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]AnalysisRecord),
	}
}

// Save upserts the record by request ID.
func (r *MemoryRepo) Save(ctx context.Context, record AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.RequestID] = record
	return nil
}

// GetByRequestID returns a record by its request ID.
func (r *MemoryRepo) GetByRequestID(ctx context.Context, requestID string) (AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[requestID]
	if !ok {
		return AnalysisRecord{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns the user's records newest-first, up to limit.
// A non-positive limit means no limit.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]AnalysisRecord, 0)
	for _, record := range r.byID {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var _ Repo = (*MemoryRepo)(nil)
