package policysearch

import (
	"context"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
)

// mockIndex implements Index for tests.
type mockIndex struct {
	hybridFn       func(ctx context.Context, text string, vector []float32, engagementID string, topK int) ([]policy.Document, error)
	hybridByTextFn func(ctx context.Context, text, engagementID string, topK int) ([]policy.Document, error)

	hybridCalls       int
	hybridByTextCalls int
	lastTopK          int
	lastVector        []float32
}

func (m *mockIndex) Hybrid(ctx context.Context, text string, vector []float32, engagementID string, topK int) ([]policy.Document, error) {
	m.hybridCalls++
	m.lastTopK = topK
	m.lastVector = vector
	if m.hybridFn != nil {
		return m.hybridFn(ctx, text, vector, engagementID, topK)
	}
	return nil, nil
}

func (m *mockIndex) HybridByText(ctx context.Context, text, engagementID string, topK int) ([]policy.Document, error) {
	m.hybridByTextCalls++
	m.lastTopK = topK
	if m.hybridByTextFn != nil {
		return m.hybridByTextFn(ctx, text, engagementID, topK)
	}
	return nil, domain.ErrVectorizerUnavailable
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}
