// Package mcp exposes the financial-record lookups and policy search as
// Model Context Protocol tools over stdio or streamable HTTP.
//
// Tool handlers never surface service failures to the model: any error
// from the layers below, malformed filter values included, is logged
// with the operation and keys, counted, and converted to an empty JSON
// result ("{}" for point lookups, "[]" for lists). Only missing required
// tool arguments produce a tool error.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/policy"
	"github.com/auditscope/auditscope/internal/domain/record"
	"github.com/auditscope/auditscope/internal/metrics"
	urecords "github.com/auditscope/auditscope/internal/usecase/records"
)

// recordsService is the slice of the records usecase the tools need.
type recordsService interface {
	GetInvoice(ctx context.Context, engagementID, invoiceID string) (record.Record, error)
	GetVendor(ctx context.Context, engagementID, vendorID string) (record.Record, error)
	GetPayment(ctx context.Context, engagementID, paymentID string) (record.Record, error)
	PaymentsForInvoice(ctx context.Context, engagementID, invoiceID string) ([]record.Record, error)
	QueryInvoices(ctx context.Context, engagementID string, f urecords.InvoiceFilter) ([]record.Record, error)
	QueryPayments(ctx context.Context, engagementID string, f urecords.PaymentFilter) ([]record.Record, error)
}

// policySearcher is the slice of the policy search usecase the tools need.
type policySearcher interface {
	Search(ctx context.Context, text, engagementID string, topK int, preferServerVectorizer bool) ([]policy.Document, error)
}

// ServerConfig holds the dependencies for the MCP server.
type ServerConfig struct {
	Records                recordsService
	Policies               policySearcher
	Version                string
	PreferServerVectorizer bool
	Logger                 *zap.Logger
}

const (
	emptyObject = "{}"
	emptyArray  = "[]"
)

// NewServer creates a configured MCP server with all auditscope tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"auditscope",
		ver,
		server.WithToolCapabilities(false),
	)

	h := &handlers{
		records:  cfg.Records,
		policies: cfg.Policies,
		prefer:   cfg.PreferServerVectorizer,
		logger:   logger,
	}

	h.registerGetInvoiceTool(s)
	h.registerGetVendorTool(s)
	h.registerGetPaymentTool(s)
	h.registerPaymentsForInvoiceTool(s)
	h.registerQueryInvoicesTool(s)
	h.registerQueryPaymentsTool(s)
	h.registerSearchPoliciesTool(s)

	return s
}

type handlers struct {
	records  recordsService
	policies policySearcher
	prefer   bool
	logger   *zap.Logger
}

// emptyOnError converts a backend failure into the tool's empty result.
// The failure stays visible in logs and metrics only.
func (h *handlers) emptyOnError(tool, engagementID, empty string, err error, keys ...zap.Field) *mcp.CallToolResult {
	fields := append([]zap.Field{
		zap.String("tool", tool),
		zap.String("engagement_id", engagementID),
	}, keys...)
	fields = append(fields, zap.Error(err))

	if errors.Is(err, domain.ErrNotFound) {
		h.logger.Info("tool returned empty result", fields...)
	} else {
		h.logger.Warn("tool degraded to empty result", fields...)
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, "empty").Inc()
	return mcp.NewToolResultText(empty)
}

// okResult marshals v and counts the call as ok. A marshal failure is
// treated like any backend failure.
func (h *handlers) okResult(tool, engagementID, empty string, v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return h.emptyOnError(tool, engagementID, empty, fmt.Errorf("marshal result: %w", err))
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, "ok").Inc()
	return mcp.NewToolResultText(string(data))
}

func observeDuration(tool string, start time.Time) {
	metrics.ToolCallDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

// --- Point lookup tools ---

func (h *handlers) registerGetInvoiceTool(s *server.MCPServer) {
	tool := mcp.NewTool("get_invoice",
		mcp.WithDescription("Look up a single invoice by invoice ID within an engagement. Returns the invoice as a JSON object, or {} when not found."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier, e.g. 'eng-001'"),
		),
		mcp.WithString("invoice_id",
			mcp.Required(),
			mcp.Description("Invoice identifier, e.g. 'INV-1042'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("get_invoice", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}
		invoiceID, err := req.RequireString("invoice_id")
		if err != nil {
			return mcp.NewToolResultError("invoice_id is required"), nil
		}

		rec, err := h.records.GetInvoice(ctx, engagementID, invoiceID)
		if err != nil {
			return h.emptyOnError("get_invoice", engagementID, emptyObject, err,
				zap.String("invoice_id", invoiceID)), nil
		}
		return h.okResult("get_invoice", engagementID, emptyObject, rec), nil
	})
}

func (h *handlers) registerGetVendorTool(s *server.MCPServer) {
	tool := mcp.NewTool("get_vendor",
		mcp.WithDescription("Look up a single vendor by vendor ID within an engagement. Returns the vendor as a JSON object, or {} when not found."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier"),
		),
		mcp.WithString("vendor_id",
			mcp.Required(),
			mcp.Description("Vendor identifier, e.g. 'VEND-007'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("get_vendor", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}
		vendorID, err := req.RequireString("vendor_id")
		if err != nil {
			return mcp.NewToolResultError("vendor_id is required"), nil
		}

		rec, err := h.records.GetVendor(ctx, engagementID, vendorID)
		if err != nil {
			return h.emptyOnError("get_vendor", engagementID, emptyObject, err,
				zap.String("vendor_id", vendorID)), nil
		}
		return h.okResult("get_vendor", engagementID, emptyObject, rec), nil
	})
}

func (h *handlers) registerGetPaymentTool(s *server.MCPServer) {
	tool := mcp.NewTool("get_payment",
		mcp.WithDescription("Look up a single payment by payment ID within an engagement. Returns the payment as a JSON object, or {} when not found."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier"),
		),
		mcp.WithString("payment_id",
			mcp.Required(),
			mcp.Description("Payment identifier, e.g. 'PAY-3001'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("get_payment", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}
		paymentID, err := req.RequireString("payment_id")
		if err != nil {
			return mcp.NewToolResultError("payment_id is required"), nil
		}

		rec, err := h.records.GetPayment(ctx, engagementID, paymentID)
		if err != nil {
			return h.emptyOnError("get_payment", engagementID, emptyObject, err,
				zap.String("payment_id", paymentID)), nil
		}
		return h.okResult("get_payment", engagementID, emptyObject, rec), nil
	})
}

// --- List tools ---

func (h *handlers) registerPaymentsForInvoiceTool(s *server.MCPServer) {
	tool := mcp.NewTool("get_payments_for_invoice",
		mcp.WithDescription("List all payments applied to an invoice within an engagement. Returns a JSON array, [] when the invoice has no payments."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier"),
		),
		mcp.WithString("invoice_id",
			mcp.Required(),
			mcp.Description("Invoice identifier the payments were applied to"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("get_payments_for_invoice", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}
		invoiceID, err := req.RequireString("invoice_id")
		if err != nil {
			return mcp.NewToolResultError("invoice_id is required"), nil
		}

		recs, err := h.records.PaymentsForInvoice(ctx, engagementID, invoiceID)
		if err != nil {
			return h.emptyOnError("get_payments_for_invoice", engagementID, emptyArray, err,
				zap.String("invoice_id", invoiceID)), nil
		}
		return h.okResult("get_payments_for_invoice", engagementID, emptyArray, nonNil(recs)), nil
	})
}

func (h *handlers) registerQueryInvoicesTool(s *server.MCPServer) {
	tool := mcp.NewTool("query_invoices",
		mcp.WithDescription("Query invoices within an engagement by date range, vendor, status, and amount bounds. All filters are optional and combined with AND. Dates accept YYYY-MM-DD or RFC 3339; the upper date bound is inclusive for bare dates. Returns a JSON array."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier"),
		),
		mcp.WithString("date_from",
			mcp.Description("Lower invoice date bound, e.g. '2025-07-01'"),
		),
		mcp.WithString("date_to",
			mcp.Description("Upper invoice date bound, e.g. '2025-09-30'"),
		),
		mcp.WithString("vendor_id",
			mcp.Description("Restrict to invoices from this vendor"),
		),
		mcp.WithString("status",
			mcp.Description("Invoice status, e.g. 'paid', 'pending', 'overdue'"),
		),
		mcp.WithNumber("min_amount",
			mcp.Description("Minimum invoice amount, inclusive"),
		),
		mcp.WithNumber("max_amount",
			mcp.Description("Maximum invoice amount, inclusive"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of invoices to return"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("query_invoices", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}

		var f urecords.InvoiceFilter
		if v, err := req.RequireString("date_from"); err == nil {
			f.DateFrom = v
		}
		if v, err := req.RequireString("date_to"); err == nil {
			f.DateTo = v
		}
		if v, err := req.RequireString("vendor_id"); err == nil {
			f.VendorID = v
		}
		if v, err := req.RequireString("status"); err == nil {
			f.Status = v
		}
		if v, err := req.RequireFloat("min_amount"); err == nil {
			f.MinAmount = &v
		}
		if v, err := req.RequireFloat("max_amount"); err == nil {
			f.MaxAmount = &v
		}
		if v, err := req.RequireFloat("limit"); err == nil {
			f.Limit = int(v)
		}

		recs, err := h.records.QueryInvoices(ctx, engagementID, f)
		if err != nil {
			return h.emptyOnError("query_invoices", engagementID, emptyArray, err), nil
		}
		return h.okResult("query_invoices", engagementID, emptyArray, nonNil(recs)), nil
	})
}

func (h *handlers) registerQueryPaymentsTool(s *server.MCPServer) {
	tool := mcp.NewTool("query_payments",
		mcp.WithDescription("Query payments within an engagement by date range, vendor, and invoice. All filters are optional and combined with AND. Dates accept YYYY-MM-DD or RFC 3339; the upper date bound is inclusive for bare dates. Returns a JSON array."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("engagement_id",
			mcp.Required(),
			mcp.Description("Engagement (tenant) identifier"),
		),
		mcp.WithString("date_from",
			mcp.Description("Lower payment date bound, e.g. '2025-07-01'"),
		),
		mcp.WithString("date_to",
			mcp.Description("Upper payment date bound, e.g. '2025-09-30'"),
		),
		mcp.WithString("vendor_id",
			mcp.Description("Restrict to payments made to this vendor"),
		),
		mcp.WithString("invoice_id",
			mcp.Description("Restrict to payments applied to this invoice"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of payments to return"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("query_payments", time.Now())

		engagementID, err := req.RequireString("engagement_id")
		if err != nil {
			return mcp.NewToolResultError("engagement_id is required"), nil
		}

		var f urecords.PaymentFilter
		if v, err := req.RequireString("date_from"); err == nil {
			f.DateFrom = v
		}
		if v, err := req.RequireString("date_to"); err == nil {
			f.DateTo = v
		}
		if v, err := req.RequireString("vendor_id"); err == nil {
			f.VendorID = v
		}
		if v, err := req.RequireString("invoice_id"); err == nil {
			f.InvoiceID = v
		}
		if v, err := req.RequireFloat("limit"); err == nil {
			f.Limit = int(v)
		}

		recs, err := h.records.QueryPayments(ctx, engagementID, f)
		if err != nil {
			return h.emptyOnError("query_payments", engagementID, emptyArray, err), nil
		}
		return h.okResult("query_payments", engagementID, emptyArray, nonNil(recs)), nil
	})
}

// --- Policy search tool ---

func (h *handlers) registerSearchPoliciesTool(s *server.MCPServer) {
	tool := mcp.NewTool("search_policies",
		mcp.WithDescription("Search policy documents by natural-language query using hybrid (semantic + keyword) retrieval. Returns scored snippets as a JSON array, [] when nothing matches."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query"),
		),
		mcp.WithString("engagement_id",
			mcp.Description("Restrict results to one engagement. Empty searches all engagements."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum number of snippets to return"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defer observeDuration("search_policies", time.Now())

		text, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		engagementID := ""
		if v, err := req.RequireString("engagement_id"); err == nil {
			engagementID = v
		}
		topK := 0
		if v, err := req.RequireFloat("top_k"); err == nil {
			topK = int(v)
		}

		docs, err := h.policies.Search(ctx, text, engagementID, topK, h.prefer)
		if err != nil {
			return h.emptyOnError("search_policies", engagementID, emptyArray, err,
				zap.String("query", text)), nil
		}
		return h.okResult("search_policies", engagementID, emptyArray, nonNil(docs)), nil
	})
}

// nonNil keeps empty list results marshaling to [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
