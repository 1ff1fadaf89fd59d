// Package records implements read and query operations over the
// structured financial collections.
package records

import (
	"context"
	"fmt"

	"github.com/auditscope/auditscope/internal/domain/daterange"
	"github.com/auditscope/auditscope/internal/domain/query"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// DefaultLimit caps query results when the caller does not ask for a
// specific page size.
const DefaultLimit = 200

// Service exposes point lookups and filtered queries. All operations are
// tenant-scoped; the engagement id is mandatory on every call.
type Service struct {
	gw    Gateway
	limit int
}

// New creates a records service. defaultLimit <= 0 falls back to DefaultLimit.
func New(gw Gateway, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Service{gw: gw, limit: defaultLimit}
}

// GetInvoice returns one invoice by its business key.
func (s *Service) GetInvoice(ctx context.Context, engagementID, invoiceID string) (record.Record, error) {
	return s.gw.GetByKey(ctx, record.Invoices, engagementID, invoiceID)
}

// GetVendor returns one vendor by its business key.
func (s *Service) GetVendor(ctx context.Context, engagementID, vendorID string) (record.Record, error) {
	return s.gw.GetByKey(ctx, record.Vendors, engagementID, vendorID)
}

// GetPayment returns one payment by its business key.
func (s *Service) GetPayment(ctx context.Context, engagementID, paymentID string) (record.Record, error) {
	return s.gw.GetByKey(ctx, record.Payments, engagementID, paymentID)
}

// PaymentsForInvoice lists all payments applied to one invoice.
func (s *Service) PaymentsForInvoice(ctx context.Context, engagementID, invoiceID string) ([]record.Record, error) {
	q, err := query.New(record.TenantField, engagementID).
		Eq("invoice_id", invoiceID).
		Build()
	if err != nil {
		return nil, fmt.Errorf("payments for invoice: %w", err)
	}
	return s.gw.Query(ctx, record.Payments, q, s.limit)
}

// InvoiceFilter holds optional invoice query criteria. Zero values are
// skipped, never matched.
type InvoiceFilter struct {
	DateFrom  string
	DateTo    string
	VendorID  string
	Status    string
	MinAmount *float64
	MaxAmount *float64
	Limit     int
}

// QueryInvoices lists invoices matching the filter. Date bounds are
// normalized first; a malformed date fails the whole query.
func (s *Service) QueryInvoices(ctx context.Context, engagementID string, f InvoiceFilter) ([]record.Record, error) {
	bounds, err := daterange.Normalize(f.DateFrom, f.DateTo)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	q, err := query.New(record.TenantField, engagementID).
		Gte(record.Invoices.DateField, bounds.Lower).
		Lt(record.Invoices.DateField, bounds.Upper).
		Eq("vendor_id", f.VendorID).
		Eq("status", f.Status).
		MinNum("amount", f.MinAmount).
		MaxNum("amount", f.MaxAmount).
		Build()
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	return s.gw.Query(ctx, record.Invoices, q, s.pageLimit(f.Limit))
}

// PaymentFilter holds optional payment query criteria.
type PaymentFilter struct {
	DateFrom  string
	DateTo    string
	VendorID  string
	InvoiceID string
	Limit     int
}

// QueryPayments lists payments matching the filter.
func (s *Service) QueryPayments(ctx context.Context, engagementID string, f PaymentFilter) ([]record.Record, error) {
	bounds, err := daterange.Normalize(f.DateFrom, f.DateTo)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}

	q, err := query.New(record.TenantField, engagementID).
		Gte(record.Payments.DateField, bounds.Lower).
		Lt(record.Payments.DateField, bounds.Upper).
		Eq("vendor_id", f.VendorID).
		Eq("invoice_id", f.InvoiceID).
		Build()
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}

	return s.gw.Query(ctx, record.Payments, q, s.pageLimit(f.Limit))
}

func (s *Service) pageLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.limit
}
