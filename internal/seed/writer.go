package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// recordStore is the slice of the records gateway the writer needs.
type recordStore interface {
	EnsureCollection(ctx context.Context, collection string) error
	InsertBatch(ctx context.Context, collection string, recs []record.Record) error
}

// policyIndex is the slice of the policy index repository the writer needs.
type policyIndex interface {
	EnsureIndex(ctx context.Context) error
	Upload(ctx context.Context, docs []policy.Document, vectors [][]float32) error
}

// Writer provisions storage and loads a generated dataset.
type Writer struct {
	store    recordStore
	index    policyIndex
	embedder domain.BatchEmbedder
	logger   *zap.Logger
}

// NewWriter creates a Writer. embedder vectorizes policy snippet content
// with the document instruction already applied by the caller's chain.
func NewWriter(store recordStore, index policyIndex, embedder domain.BatchEmbedder, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, index: index, embedder: embedder, logger: logger}
}

// Write creates the collections and index, inserts the records, and
// uploads embedded policy snippets. Partial progress is not rolled back.
func (w *Writer) Write(ctx context.Context, ds Dataset) error {
	batches := []struct {
		collection string
		recs       []record.Record
	}{
		{record.Vendors.Collection, ds.Vendors},
		{record.Invoices.Collection, ds.Invoices},
		{record.Payments.Collection, ds.Payments},
	}

	for _, b := range batches {
		if err := w.store.EnsureCollection(ctx, b.collection); err != nil {
			return fmt.Errorf("ensure %s: %w", b.collection, err)
		}
		if err := w.store.InsertBatch(ctx, b.collection, b.recs); err != nil {
			return fmt.Errorf("insert %s: %w", b.collection, err)
		}
		w.logger.Info("records written",
			zap.String("collection", b.collection),
			zap.Int("count", len(b.recs)),
		)
	}

	if err := w.index.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure policy index: %w", err)
	}

	if len(ds.Policies) == 0 {
		return nil
	}

	texts := make([]string, len(ds.Policies))
	for i, d := range ds.Policies {
		texts[i] = d.Content
	}

	res, err := w.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed policy snippets: %w", err)
	}

	if err := w.index.Upload(ctx, ds.Policies, res.Embeddings); err != nil {
		return fmt.Errorf("upload policy snippets: %w", err)
	}

	w.logger.Info("policy snippets indexed",
		zap.Int("count", len(ds.Policies)),
		zap.Int("embedding_tokens", res.TotalTokens),
	)
	return nil
}
