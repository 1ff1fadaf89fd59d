// Package query assembles parameterized predicates for the record store.
//
// The builder produces an ordered clause list and a parallel argument list;
// it never executes anything itself, which keeps predicate assembly
// independently testable from the gateway that runs it.
package query

import (
	"fmt"
	"strings"
)

// Op is a comparison operator supported by the record store collaborator.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
	OpLt  Op = "<"
)

// Clause is a single field/operator predicate bound to one positional
// parameter.
type Clause struct {
	Field string
	Op    Op
}

// String renders the clause with a positional placeholder, e.g. "amount >= ?".
func (c Clause) String() string {
	return fmt.Sprintf("%s %s ?", c.Field, c.Op)
}

// Query is an ordered predicate list with its bound parameters. Clauses[i]
// consumes Args[i].
type Query struct {
	Clauses []Clause
	Args    []any
}

// Builder accumulates predicate clauses in a fixed, deterministic order.
// The tenant equality clause is always first; callers append remaining
// criteria in their entity's declaration order. Absent criteria are
// silently skipped: that is filtering, not an error.
type Builder struct {
	q Query
}

// New starts a query scoped to one tenant. Every query carries the
// engagement_id equality predicate as its first clause; no query may cross
// tenants implicitly.
func New(tenantField, engagementID string) *Builder {
	b := &Builder{}
	b.append(tenantField, OpEq, engagementID)
	return b
}

// Eq appends an equality clause, skipped when value is empty.
func (b *Builder) Eq(field, value string) *Builder {
	if value != "" {
		b.append(field, OpEq, value)
	}
	return b
}

// Gte appends a string >= clause, skipped when value is empty. Used for
// normalized inclusive lower date bounds.
func (b *Builder) Gte(field, value string) *Builder {
	if value != "" {
		b.append(field, OpGte, value)
	}
	return b
}

// Lt appends a string < clause, skipped when value is empty. Used for
// normalized exclusive upper date bounds.
func (b *Builder) Lt(field, value string) *Builder {
	if value != "" {
		b.append(field, OpLt, value)
	}
	return b
}

// MinNum appends a numeric >= clause, skipped when value is nil. The value
// is bound as-is; no unit conversion.
func (b *Builder) MinNum(field string, value *float64) *Builder {
	if value != nil {
		b.append(field, OpGte, *value)
	}
	return b
}

// MaxNum appends a numeric <= clause, skipped when value is nil.
func (b *Builder) MaxNum(field string, value *float64) *Builder {
	if value != nil {
		b.append(field, OpLte, *value)
	}
	return b
}

// Build validates field names and returns the assembled query.
func (b *Builder) Build() (Query, error) {
	for _, c := range b.q.Clauses {
		if !validField(c.Field) {
			return Query{}, fmt.Errorf("invalid field name %q", c.Field)
		}
	}
	return b.q, nil
}

func (b *Builder) append(field string, op Op, arg any) {
	b.q.Clauses = append(b.q.Clauses, Clause{Field: field, Op: op})
	b.q.Args = append(b.q.Args, arg)
}

// String renders the full predicate for logging, e.g.
// "engagement_id = ? AND amount >= ?".
func (q Query) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// validField accepts lower_snake_case identifiers only. Clause fields are
// interpolated into store query text, so anything else is rejected.
func validField(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c == '_' || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}
