package mcp

import (
	"context"

	"github.com/auditscope/auditscope/internal/domain/policy"
	"github.com/auditscope/auditscope/internal/domain/record"
	urecords "github.com/auditscope/auditscope/internal/usecase/records"
)

type mockRecords struct {
	getInvoiceFn         func(ctx context.Context, engagementID, invoiceID string) (record.Record, error)
	getVendorFn          func(ctx context.Context, engagementID, vendorID string) (record.Record, error)
	getPaymentFn         func(ctx context.Context, engagementID, paymentID string) (record.Record, error)
	paymentsForInvoiceFn func(ctx context.Context, engagementID, invoiceID string) ([]record.Record, error)
	queryInvoicesFn      func(ctx context.Context, engagementID string, f urecords.InvoiceFilter) ([]record.Record, error)
	queryPaymentsFn      func(ctx context.Context, engagementID string, f urecords.PaymentFilter) ([]record.Record, error)
}

func (m *mockRecords) GetInvoice(ctx context.Context, engagementID, invoiceID string) (record.Record, error) {
	return m.getInvoiceFn(ctx, engagementID, invoiceID)
}

func (m *mockRecords) GetVendor(ctx context.Context, engagementID, vendorID string) (record.Record, error) {
	return m.getVendorFn(ctx, engagementID, vendorID)
}

func (m *mockRecords) GetPayment(ctx context.Context, engagementID, paymentID string) (record.Record, error) {
	return m.getPaymentFn(ctx, engagementID, paymentID)
}

func (m *mockRecords) PaymentsForInvoice(ctx context.Context, engagementID, invoiceID string) ([]record.Record, error) {
	return m.paymentsForInvoiceFn(ctx, engagementID, invoiceID)
}

func (m *mockRecords) QueryInvoices(ctx context.Context, engagementID string, f urecords.InvoiceFilter) ([]record.Record, error) {
	return m.queryInvoicesFn(ctx, engagementID, f)
}

func (m *mockRecords) QueryPayments(ctx context.Context, engagementID string, f urecords.PaymentFilter) ([]record.Record, error) {
	return m.queryPaymentsFn(ctx, engagementID, f)
}

type mockSearcher struct {
	searchFn func(ctx context.Context, text, engagementID string, topK int, prefer bool) ([]policy.Document, error)
}

func (m *mockSearcher) Search(ctx context.Context, text, engagementID string, topK int, prefer bool) ([]policy.Document, error) {
	return m.searchFn(ctx, text, engagementID, topK, prefer)
}
