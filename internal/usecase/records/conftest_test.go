package records

import (
	"context"

	"github.com/auditscope/auditscope/internal/domain/query"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// mockGateway implements Gateway for tests.
type mockGateway struct {
	getByKeyFn func(ctx context.Context, ent record.Entity, engagementID, key string) (record.Record, error)
	queryFn    func(ctx context.Context, ent record.Entity, q query.Query, limit int) ([]record.Record, error)

	lastEntity record.Entity
	lastQuery  query.Query
	lastLimit  int
}

func (m *mockGateway) GetByKey(ctx context.Context, ent record.Entity, engagementID, key string) (record.Record, error) {
	m.lastEntity = ent
	if m.getByKeyFn != nil {
		return m.getByKeyFn(ctx, ent, engagementID, key)
	}
	return record.Record{}, nil
}

func (m *mockGateway) Query(ctx context.Context, ent record.Entity, q query.Query, limit int) ([]record.Record, error) {
	m.lastEntity = ent
	m.lastQuery = q
	m.lastLimit = limit
	if m.queryFn != nil {
		return m.queryFn(ctx, ent, q, limit)
	}
	return nil, nil
}
