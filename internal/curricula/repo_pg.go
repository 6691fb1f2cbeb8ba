package curricula

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"cvquery-backend/internal/shared/telemetry"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts the record by request ID. Backend failures are logged and
// absorbed: the analysis result has already been produced and a broken
// audit trail must not fail the request.
func (r *PGRepo) Save(ctx context.Context, record AnalysisRecord) error {
	const query = `
INSERT INTO analysis_logs (request_id, user_id, ts, query, files_count, file_names, result, processing_time, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (request_id) DO UPDATE SET
	user_id = EXCLUDED.user_id,
	ts = EXCLUDED.ts,
	query = EXCLUDED.query,
	files_count = EXCLUDED.files_count,
	file_names = EXCLUDED.file_names,
	result = EXCLUDED.result,
	processing_time = EXCLUDED.processing_time,
	status = EXCLUDED.status`

	resultBlob, err := json.Marshal(record.Result)
	if err != nil {
		return err
	}
	namesBlob, err := json.Marshal(fileNamesOrEmpty(record.FileNames))
	if err != nil {
		return err
	}

	var queryField sql.NullString
	if record.Query != "" {
		queryField = sql.NullString{String: record.Query, Valid: true}
	}

	// Numbers travel as text so the NUMERIC column keeps full precision.
	_, err = r.DB.ExecContext(ctx, query,
		record.RequestID,
		record.UserID,
		record.Timestamp,
		queryField,
		record.FilesCount,
		string(namesBlob),
		string(resultBlob),
		strconv.FormatFloat(record.ProcessingTime, 'f', -1, 64),
		record.Status,
	)
	if err != nil {
		telemetry.Error("record.save_failed", map[string]any{
			"backend":    "postgres",
			"request_id": record.RequestID,
			"error":      sanitizeError(err),
		})
		return nil
	}
	return nil
}

// GetByRequestID returns a record by its request ID. Backend failures are
// logged and reported as not-found, matching the read contract.
func (r *PGRepo) GetByRequestID(ctx context.Context, requestID string) (AnalysisRecord, error) {
	const query = `
SELECT request_id, user_id, ts, query, files_count, file_names, result, processing_time, status
FROM analysis_logs
WHERE request_id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, requestID)
	record, err := scanRecord(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			telemetry.Error("record.get_failed", map[string]any{
				"backend":    "postgres",
				"request_id": requestID,
				"error":      sanitizeError(err),
			})
		}
		return AnalysisRecord{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns the user's records newest-first. Backend failures
// are logged and degrade to an empty history.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error) {
	const query = `
SELECT request_id, user_id, ts, query, files_count, file_names, result, processing_time, status
FROM analysis_logs
WHERE user_id = $1
ORDER BY ts DESC
LIMIT $2`

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		telemetry.Error("record.list_failed", map[string]any{
			"backend": "postgres",
			"user_id": userID,
			"error":   sanitizeError(err),
		})
		return []AnalysisRecord{}, nil
	}
	defer rows.Close()

	records := make([]AnalysisRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (AnalysisRecord, error) {
	var record AnalysisRecord
	var queryField sql.NullString
	var namesBlob string
	var resultBlob string
	var processingTime string

	err := row.Scan(
		&record.RequestID,
		&record.UserID,
		&record.Timestamp,
		&queryField,
		&record.FilesCount,
		&namesBlob,
		&resultBlob,
		&processingTime,
		&record.Status,
	)
	if err != nil {
		return AnalysisRecord{}, err
	}

	record.Query = queryField.String
	if err := json.Unmarshal([]byte(namesBlob), &record.FileNames); err != nil {
		return AnalysisRecord{}, err
	}
	if err := json.Unmarshal([]byte(resultBlob), &record.Result); err != nil {
		return AnalysisRecord{}, err
	}
	record.ProcessingTime, err = strconv.ParseFloat(processingTime, 64)
	if err != nil {
		return AnalysisRecord{}, err
	}
	return record, nil
}

func fileNamesOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

var _ Repo = (*PGRepo)(nil)
