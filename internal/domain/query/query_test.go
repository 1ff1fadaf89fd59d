package query

import (
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestBuilder_TenantClauseAlwaysFirst(t *testing.T) {
	q, err := New("engagement_id", "eng-001").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(q.Clauses) != 1 || q.Clauses[0].String() != "engagement_id = ?" {
		t.Fatalf("clauses = %v, want single tenant equality", q.Clauses)
	}
	if len(q.Args) != 1 || q.Args[0] != "eng-001" {
		t.Fatalf("args = %v", q.Args)
	}
}

func TestBuilder_SkipsAbsentCriteria(t *testing.T) {
	q, err := New("engagement_id", "eng-001").
		Gte("invoice_date", "").
		Lt("invoice_date", "").
		Eq("vendor_id", "").
		Eq("status", "").
		MinNum("amount", nil).
		MaxNum("amount", nil).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(q.Clauses) != 1 {
		t.Fatalf("absent criteria must emit no clauses, got %v", q.Clauses)
	}
}

func TestBuilder_DeterministicOrder(t *testing.T) {
	build := func() Query {
		q, err := New("engagement_id", "eng-001").
			Eq("vendor_id", "VEN-1000").
			MinNum("amount", f64(1000)).
			Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return q
	}

	q := build()
	want := []string{"engagement_id = ?", "vendor_id = ?", "amount >= ?"}
	got := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		got[i] = c.String()
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clauses = %v, want %v", got, want)
	}
	if len(q.Args) != 3 {
		t.Fatalf("args = %v, want 3 bound parameters", q.Args)
	}

	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(build(), q) {
			t.Fatal("repeated builds with identical inputs must be identical")
		}
	}
}

func TestBuilder_DateRangeAndAmountClauses(t *testing.T) {
	q, err := New("engagement_id", "eng-001").
		Gte("invoice_date", "2025-07-01T00:00:00Z").
		Lt("invoice_date", "2025-10-01T00:00:00Z").
		Eq("status", "Paid").
		MaxNum("amount", f64(5000)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := "engagement_id = ? AND invoice_date >= ? AND invoice_date < ? AND status = ? AND amount <= ?"
	if q.String() != want {
		t.Errorf("rendered = %q, want %q", q.String(), want)
	}
	if !reflect.DeepEqual(q.Args, []any{"eng-001", "2025-07-01T00:00:00Z", "2025-10-01T00:00:00Z", "Paid", 5000.0}) {
		t.Errorf("args = %v", q.Args)
	}
}

func TestBuilder_RejectsInvalidFieldNames(t *testing.T) {
	for _, field := range []string{"Amount", "amount; DROP", "a-b", "1amount", ""} {
		_, err := New("engagement_id", "eng-001").Eq(field, "x").Build()
		if err == nil {
			t.Errorf("Build accepted field %q", field)
		}
	}
}
