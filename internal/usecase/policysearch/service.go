// Package policysearch runs hybrid (text + vector) retrieval over policy
// documents.
package policysearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
)

// Service is the hybrid search engine. It prefers letting the index
// vectorize the query server-side and falls back to computing the vector
// itself exactly once when that capability is absent.
type Service struct {
	idx         Index
	embed       Embedder
	defaultTopK int
	maxTopK     int
}

// New creates a policy search service.
func New(idx Index, embed Embedder, defaultTopK, maxTopK int) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if maxTopK <= 0 {
		maxTopK = 50
	}
	return &Service{idx: idx, embed: embed, defaultTopK: defaultTopK, maxTopK: maxTopK}
}

// Search retrieves policy documents for the query text. An empty
// engagementID searches across tenants. When preferServerVectorizer is
// set, the server-vectorized path is tried first; only a vectorizer
// capability failure (raised before any index request) switches to the
// app-computed vector, and only for this one call. A request that the
// index actually ran and failed is never retried on the other path.
func (s *Service) Search(
	ctx context.Context, text, engagementID string, topK int, preferServerVectorizer bool,
) ([]policy.Document, error) {
	topK = s.clampTopK(topK)

	if preferServerVectorizer {
		docs, err := s.idx.HybridByText(ctx, text, engagementID, topK)
		if err == nil {
			return docs, nil
		}
		if !errors.Is(err, domain.ErrVectorizerUnavailable) {
			return nil, fmt.Errorf("server-vectorized search: %w: %w", domain.ErrSearchUnavailable, err)
		}
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := s.idx.Hybrid(ctx, text, emb.Embedding, engagementID, topK)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w: %w", domain.ErrSearchUnavailable, err)
	}
	return docs, nil
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		return s.defaultTopK
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}
