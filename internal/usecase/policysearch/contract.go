package policysearch

import (
	"context"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
)

// Index defines the hybrid policy index contract. Ranking fusion happens
// inside the index; results arrive in final order.
type Index interface {
	// Hybrid runs one combined text+vector query with the caller's vector.
	Hybrid(ctx context.Context, text string, vector []float32, engagementID string, topK int) ([]policy.Document, error)
	// HybridByText asks the index to vectorize the query text itself.
	// Fails with domain.ErrVectorizerUnavailable at query construction
	// when the index has no server-side vectorizer.
	HybridByText(ctx context.Context, text, engagementID string, topK int) ([]policy.Document, error)
}

// Embedder vectorizes query text for the fallback path.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
