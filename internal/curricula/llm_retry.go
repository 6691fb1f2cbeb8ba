package curricula

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"cvquery-backend/internal/llm"
	"cvquery-backend/internal/shared/telemetry"
)

const llmRetryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base llm.StructuredClient
}

func newRetryingClient(base llm.StructuredClient) llm.StructuredClient {
	if base == nil {
		return nil
	}
	return retryingClient{base: base}
}

func (r retryingClient) GenerateStructured(ctx context.Context, req llm.StructuredRequest) (json.RawMessage, error) {
	resp, err := r.base.GenerateStructured(ctx, req)
	if err == nil || !shouldRetryLLM(err) {
		return resp, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"schema": req.SchemaName,
		"error":  sanitizeError(err),
	})
	select {
	case <-time.After(llmRetryBaseDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return r.base.GenerateStructured(ctx, req)
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
