// Package policyindex implements the policy-document hybrid index on a
// RediSearch-compatible store. Vector KNN and BM25 text results are fused
// internally; callers see a single ranked list.
package policyindex

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/auditscope/auditscope/internal/db"
	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsQueryVectorization(ctx context.Context) bool
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// Config holds index naming and HNSW tuning.
type Config struct {
	IndexName       string
	KeyPrefix       string
	VectorDims      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo implements the hybrid policy index collaborator.
type Repo struct {
	store store
	cfg   Config
}

// New creates a policy index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

var returnFields = []string{
	policy.FieldDocType,
	policy.FieldEngagementID,
	policy.FieldPolicyID,
	policy.FieldSection,
	policy.FieldEffectiveDate,
	policy.FieldContent,
}

// HybridByText runs a hybrid query letting the index vectorize the query
// text itself. The backing store exposes no index-resident vectorizer, so
// this fails at query construction with ErrVectorizerUnavailable before
// any request is sent; callers may then retry with their own vector.
func (r *Repo) HybridByText(ctx context.Context, text, engagementID string, topK int) ([]policy.Document, error) {
	if !r.store.SupportsQueryVectorization(ctx) {
		return nil, fmt.Errorf("index %s: %w", r.cfg.IndexName, domain.ErrVectorizerUnavailable)
	}
	return nil, fmt.Errorf("index %s: no server-vectorized query path in driver: %w",
		r.cfg.IndexName, domain.ErrVectorizerUnavailable)
}

// Hybrid runs one combined hybrid query: vector KNN and BM25 text search
// over the same filter, fused by Reciprocal Rank Fusion. Ranking is
// internal; callers receive documents in final fused order.
func (r *Repo) Hybrid(ctx context.Context, text string, vector []float32, engagementID string, topK int) ([]policy.Document, error) {
	filters := tenantFilter(engagementID)

	knnRes, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  policy.FieldVector,
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid knn %s: %w", r.cfg.IndexName, err)
	}

	bm25Res, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.cfg.IndexName,
		TextField:    policy.FieldContent,
		Query:        text,
		Filters:      filters,
		TopK:         topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid bm25 %s: %w", r.cfg.IndexName, err)
	}

	knn := r.toDocuments(knnRes)
	bm25 := r.toDocuments(bm25Res)
	return fuseRRF(knn, bm25, topK), nil
}

// EnsureIndex creates the policy index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.cfg.IndexName).
		Prefix(r.cfg.KeyPrefix).
		Tag(policy.FieldDocType).
		Tag(policy.FieldEngagementID).
		Tag(policy.FieldPolicyID).
		Tag(policy.FieldSection).
		Tag(policy.FieldEffectiveDate).
		Text(policy.FieldContent).
		VectorHNSW(policy.FieldVector, r.cfg.VectorDims, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// Upload stores documents with their vectors as hashes in one pipelined
// round-trip. vectors[i] belongs to docs[i].
func (r *Repo) Upload(ctx context.Context, docs []policy.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d documents but %d vectors", len(docs), len(vectors))
	}
	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		items[i] = db.HashSetItem{
			Key: r.cfg.KeyPrefix + doc.ID,
			Fields: map[string]string{
				policy.FieldDocType:       doc.DocType,
				policy.FieldEngagementID:  doc.EngagementID,
				policy.FieldPolicyID:      doc.PolicyID,
				policy.FieldSection:       doc.Section,
				policy.FieldEffectiveDate: doc.EffectiveDate,
				policy.FieldContent:       doc.Content,
				policy.FieldVector:        vectorToBytes(vectors[i]),
			},
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upload %d policy documents: %w", len(items), err)
	}
	return nil
}

func (r *Repo) toDocuments(sr *db.SearchResult) []policy.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	docs := make([]policy.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.cfg.KeyPrefix)
		docs = append(docs, policy.FromFields(id, entry.Score, entry.Fields))
	}
	return docs
}

func tenantFilter(engagementID string) []db.TagMatch {
	if engagementID == "" {
		return nil
	}
	return []db.TagMatch{{Field: policy.FieldEngagementID, Value: engagementID}}
}

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
func fuseRRF(knn, bm25 []policy.Document, topK int) []policy.Document {
	type scored struct {
		doc   policy.Document
		score float64
	}

	merged := make(map[string]*scored)

	for rank, d := range knn {
		merged[d.ID] = &scored{doc: d, score: 1.0 / float64(rrfK+rank+1)}
	}

	for rank, d := range bm25 {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[d.ID]; ok {
			existing.score += s
		} else {
			merged[d.ID] = &scored{doc: d, score: s}
		}
	}

	docs := make([]policy.Document, 0, len(merged))
	for _, s := range merged {
		d := s.doc
		d.Score = s.score
		docs = append(docs, d)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID // stable order for equal fused scores
	})

	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs
}

// vectorToBytes encodes float32 values little-endian for HNSW storage.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
