package llm

import (
	"context"
	"encoding/json"
)

// StructuredClient abstracts providers capable of schema-constrained generation.
type StructuredClient interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// StructuredRequest captures the inputs for one structured-generation call.
type StructuredRequest struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     json.RawMessage
}
