package records

import (
	"context"

	"github.com/auditscope/auditscope/internal/domain/query"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// Gateway defines the record store contract.
type Gateway interface {
	GetByKey(ctx context.Context, ent record.Entity, engagementID, key string) (record.Record, error)
	Query(ctx context.Context, ent record.Entity, q query.Query, limit int) ([]record.Record, error)
}
