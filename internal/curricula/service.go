package curricula

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cvquery-backend/internal/extract"
	"cvquery-backend/internal/shared/metrics"
	"cvquery-backend/internal/shared/telemetry"
)

// Response is the uniform success envelope for an analysis request.
type Response struct {
	Code                  int            `json:"code"`
	Status                string         `json:"status"`
	RequestID             string         `json:"request_id"`
	UserID                string         `json:"user_id"`
	FilesProcessed        int            `json:"files_processed"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
	Result                AnalysisResult `json:"result"`
	Message               string         `json:"message"`
}

// Service runs the analysis pipeline for one request: archive the
// uploads, extract text, analyze, persist the audit record, and shape
// the response envelope.
type Service struct {
	Extractor extract.Extractor
	Analyzer  Analyzer
	Repo      Repo
	Archive   *Archive
}

// Execute runs the pipeline. The presence of a non-blank query selects
// query mode; otherwise every file is summarized individually. Pipeline
// failures are persisted as error records and then propagated.
func (s *Service) Execute(ctx context.Context, files []extract.File, query, requestID, userID string) (Response, error) {
	start := time.Now()
	metrics.IncAnalysisStarted()
	query = strings.TrimSpace(query)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}

	s.Archive.Store(ctx, userID, requestID, files)
	texts := s.Extractor.Extract(ctx, files)

	var result AnalysisResult
	if query != "" {
		analysis, err := s.Analyzer.AnalyzeWithQuery(ctx, texts, query)
		if err != nil {
			s.recordFailure(ctx, start, requestID, userID, query, names, err)
			return Response{}, err
		}
		result = QueryResult(analysis)
	} else {
		result = SummariesResult(s.Analyzer.SummarizeIndividually(ctx, texts))
	}

	elapsed := time.Since(start).Seconds()
	record := AnalysisRecord{
		RequestID:      requestID,
		UserID:         userID,
		Timestamp:      time.Now().UTC(),
		Query:          query,
		FilesCount:     len(files),
		FileNames:      names,
		Result:         result,
		ProcessingTime: elapsed,
		Status:         StatusCompleted,
	}
	s.persist(ctx, record)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(elapsed * 1000)

	telemetry.Info("analysis.complete", map[string]any{
		"request_id":  requestID,
		"user_id":     userID,
		"files":       len(files),
		"mode":        string(result.Kind),
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})

	return Response{
		Code:                  200,
		Status:                "success",
		RequestID:             requestID,
		UserID:                userID,
		FilesProcessed:        len(files),
		ProcessingTimeSeconds: elapsed,
		Result:                result,
		Message:               "Analysis completed successfully",
	}, nil
}

// History returns the user's recent records newest-first. Limit defaults
// to 10 when non-positive.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]RecordView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	records, err := s.Repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]RecordView, 0, len(records))
	for _, record := range records {
		views = append(views, record.View())
	}
	return views, nil
}

// GetByRequestID returns one record by request ID.
func (s *Service) GetByRequestID(ctx context.Context, requestID string) (RecordView, error) {
	record, err := s.Repo.GetByRequestID(ctx, requestID)
	if err != nil {
		return RecordView{}, err
	}
	return record.View(), nil
}

// persist saves the audit record best-effort. The repo implementations
// already absorb backend failures; any error that still surfaces (custom
// repos, cancelled contexts) is logged, never propagated.
func (s *Service) persist(ctx context.Context, record AnalysisRecord) {
	if s.Repo == nil {
		return
	}
	if err := s.Repo.Save(ctx, record); err != nil {
		telemetry.Error("analysis.save_failed", map[string]any{
			"request_id": record.RequestID,
			"user_id":    record.UserID,
			"status":     record.Status,
			"error":      sanitizeError(err),
		})
	}
}

func (s *Service) recordFailure(ctx context.Context, start time.Time, requestID, userID, query string, names []string, cause error) {
	record := AnalysisRecord{
		RequestID:      requestID,
		UserID:         userID,
		Timestamp:      time.Now().UTC(),
		Query:          query,
		FilesCount:     len(names),
		FileNames:      names,
		Result:         ErrorResult(sanitizeError(cause)),
		ProcessingTime: time.Since(start).Seconds(),
		Status:         StatusError,
	}
	s.persist(ctx, record)
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(record.ProcessingTime * 1000)
	telemetry.Error("analysis.failed", map[string]any{
		"request_id": requestID,
		"user_id":    userID,
		"error":      sanitizeError(cause),
	})
}
