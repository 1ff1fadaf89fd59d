package seed

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
	"github.com/auditscope/auditscope/internal/domain/record"
)

type mockRecordStore struct {
	ensured  []string
	inserted map[string]int
	err      error
}

func (m *mockRecordStore) EnsureCollection(ctx context.Context, collection string) error {
	if m.err != nil {
		return m.err
	}
	m.ensured = append(m.ensured, collection)
	return nil
}

func (m *mockRecordStore) InsertBatch(ctx context.Context, collection string, recs []record.Record) error {
	if m.inserted == nil {
		m.inserted = make(map[string]int)
	}
	m.inserted[collection] = len(recs)
	return nil
}

type mockPolicyIndex struct {
	ensured   bool
	uploaded  []policy.Document
	vectors   [][]float32
	ensureErr error
	uploadErr error
}

func (m *mockPolicyIndex) EnsureIndex(ctx context.Context) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.ensured = true
	return nil
}

func (m *mockPolicyIndex) Upload(ctx context.Context, docs []policy.Document, vectors [][]float32) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploaded = docs
	m.vectors = vectors
	return nil
}

type mockBatchEmbedder struct {
	texts []string
	err   error
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.texts = texts
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{float32(i), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs, TotalTokens: 10 * len(texts)}, nil
}

func TestWrite_FullDataset(t *testing.T) {
	store := &mockRecordStore{}
	index := &mockPolicyIndex{}
	embedder := &mockBatchEmbedder{}
	w := NewWriter(store, index, embedder, zap.NewNop())

	ds := Generate(Params{Vendors: 5, Invoices: 10})
	if err := w.Write(context.Background(), ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(store.ensured) != 3 {
		t.Errorf("expected 3 collections ensured, got %v", store.ensured)
	}
	if store.inserted["vendors"] != len(ds.Vendors) {
		t.Errorf("expected %d vendors inserted, got %d", len(ds.Vendors), store.inserted["vendors"])
	}
	if store.inserted["invoices"] != len(ds.Invoices) {
		t.Errorf("expected %d invoices inserted, got %d", len(ds.Invoices), store.inserted["invoices"])
	}
	if !index.ensured {
		t.Error("index must be ensured before upload")
	}
	if len(index.uploaded) != 3 || len(index.vectors) != 3 {
		t.Errorf("expected 3 docs with vectors uploaded, got %d/%d", len(index.uploaded), len(index.vectors))
	}
	if len(embedder.texts) != 3 {
		t.Errorf("expected 3 snippet texts embedded, got %d", len(embedder.texts))
	}
}

func TestWrite_StoreFailureStopsEarly(t *testing.T) {
	boom := errors.New("disk full")
	store := &mockRecordStore{err: boom}
	index := &mockPolicyIndex{}
	w := NewWriter(store, index, &mockBatchEmbedder{}, zap.NewNop())

	err := w.Write(context.Background(), Generate(Params{Vendors: 5, Invoices: 10}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if index.ensured {
		t.Error("index must not be touched after a store failure")
	}
}

func TestWrite_EmbedFailureSkipsUpload(t *testing.T) {
	boom := errors.New("quota exceeded")
	index := &mockPolicyIndex{}
	w := NewWriter(&mockRecordStore{}, index, &mockBatchEmbedder{err: boom}, zap.NewNop())

	err := w.Write(context.Background(), Generate(Params{Vendors: 5, Invoices: 10}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected embed error, got %v", err)
	}
	if index.uploaded != nil {
		t.Error("upload must not run when embedding fails")
	}
}
