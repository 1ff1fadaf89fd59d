// Package seed generates deterministic demo data for an engagement:
// vendors, a quarter of invoices with payments, a pair of anchor
// exceptions, and the policy snippets the hybrid search runs over.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/auditscope/auditscope/internal/domain/policy"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// DefaultSeed keeps repeated runs byte-identical.
const DefaultSeed = 42

// Params controls generation volume.
type Params struct {
	EngagementID string
	Vendors      int
	Invoices     int
	PayRate      float64   // fraction of invoices that get a payment
	Start        time.Time // start of the invoice date window
	Seed         int64
}

// Dataset is one engagement's worth of generated records and policy docs.
type Dataset struct {
	Vendors  []record.Record
	Invoices []record.Record
	Payments []record.Record
	Policies []policy.Document
}

var vendorNames = []string{
	"Acme Supply Co", "Northwind Parts", "Fabrikam Services",
	"Woodgrove Logistics", "Contoso Industrial",
}

var riskTiers = []string{"Low", "Medium", "High"}

var payMethods = []string{"ACH", "Wire", "Check"}

// Generate builds a full dataset from the params. The same params always
// produce the same dataset.
func Generate(p Params) Dataset {
	if p.EngagementID == "" {
		p.EngagementID = "eng-001"
	}
	if p.Vendors <= 0 {
		p.Vendors = 50
	}
	if p.Invoices <= 0 {
		p.Invoices = 400
	}
	if p.PayRate <= 0 {
		p.PayRate = 0.7
	}
	if p.Start.IsZero() {
		p.Start = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}

	rng := rand.New(rand.NewSource(p.Seed))

	vendors := generateVendors(rng, p.EngagementID, p.Vendors)
	invoices := generateInvoices(rng, p.EngagementID, vendors, p.Invoices, p.Start)
	payments := generatePayments(rng, p.EngagementID, invoices, p.PayRate)
	invoices, payments = injectAnchorExceptions(p.EngagementID, vendors, invoices, payments)

	return Dataset{
		Vendors:  vendors,
		Invoices: invoices,
		Payments: payments,
		Policies: generatePolicySnippets(p.EngagementID),
	}
}

func generateVendors(rng *rand.Rand, engagementID string, n int) []record.Record {
	vendors := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		vendorID := fmt.Sprintf("VEN-%d", 1000+i)
		vendors = append(vendors, record.Record{
			"id":                fmt.Sprintf("%s:%s", engagementID, vendorID),
			"type":              "vendor",
			"engagement_id":     engagementID,
			"vendor_id":         vendorID,
			"name":              vendorNames[rng.Intn(len(vendorNames))],
			"risk_tier":         riskTiers[rng.Intn(len(riskTiers))],
			"created_at":        "2024-11-15",
			"bank_account_hash": fmt.Sprintf("ba_%d", 10000+rng.Intn(90000)),
		})
	}
	return vendors
}

func generateInvoices(
	rng *rand.Rand, engagementID string, vendors []record.Record, n int, start time.Time,
) []record.Record {
	amounts := []float64{199.99, 487.50, 1250.00, 4999.99, 5050.00, 9900.00}

	invoices := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		vendor := vendors[rng.Intn(len(vendors))]
		invID := fmt.Sprintf("INV-%d", 7000+i)

		// ~Q3 window
		invDate := start.AddDate(0, 0, rng.Intn(93))

		var amount float64
		if idx := rng.Intn(len(amounts) + 1); idx < len(amounts) {
			amount = amounts[idx]
		} else {
			amount = float64(300 + rng.Intn(14701))
		}

		inv := record.Record{
			"id":            fmt.Sprintf("%s:%s", engagementID, invID),
			"type":          "invoice",
			"engagement_id": engagementID,
			"invoice_id":    invID,
			"vendor_id":     vendor["vendor_id"],
			"invoice_date":  utcISO(invDate),
			"amount":        amount,
			"currency":      "USD",
			"status":        []string{"Open", "Paid"}[rng.Intn(2)],
		}
		if rng.Float64() < 0.75 {
			inv["po_id"] = fmt.Sprintf("PO-%d", 8000+rng.Intn(1000))
		}
		if rng.Float64() < 0.70 {
			inv["receipt_id"] = fmt.Sprintf("RCPT-%d", 9000+rng.Intn(1000))
		}
		invoices = append(invoices, inv)
	}
	return invoices
}

func generatePayments(
	rng *rand.Rand, engagementID string, invoices []record.Record, payRate float64,
) []record.Record {
	var payments []record.Record
	for _, inv := range invoices {
		if rng.Float64() > payRate {
			continue
		}

		invID := inv["invoice_id"].(string)
		invDate, _ := time.Parse(time.RFC3339, inv["invoice_date"].(string))
		paidAt := invDate.AddDate(0, 0, 1+rng.Intn(60))

		payments = append(payments, record.Record{
			"id":            fmt.Sprintf("%s:PAY-%s", engagementID, invID),
			"type":          "payment",
			"engagement_id": engagementID,
			"payment_id":    "PAY-" + invID,
			"invoice_id":    invID,
			"vendor_id":     inv["vendor_id"],
			"paid_at":       utcISO(paidAt),
			"amount":        inv["amount"],
			"method":        payMethods[rng.Intn(len(payMethods))],
		})
	}
	return payments
}

// injectAnchorExceptions guarantees two findable exceptions regardless of
// the random draw: a duplicate invoice pair (same vendor, amount, PO,
// close dates) and a paid invoice with no PO.
func injectAnchorExceptions(
	engagementID string, vendors, invoices, payments []record.Record,
) ([]record.Record, []record.Record) {
	anchorVendor := vendors[0]["vendor_id"]

	dupPair := []record.Record{
		{
			"id":            engagementID + ":INV-ANCHOR-001",
			"type":          "invoice",
			"engagement_id": engagementID,
			"invoice_id":    "INV-ANCHOR-001",
			"vendor_id":     anchorVendor,
			"invoice_date":  "2025-08-12T00:00:00Z",
			"amount":        4875.33,
			"currency":      "USD",
			"po_id":         "PO-8123",
			"receipt_id":    "RCPT-9451",
			"status":        "Paid",
		},
		{
			"id":            engagementID + ":INV-ANCHOR-002",
			"type":          "invoice",
			"engagement_id": engagementID,
			"invoice_id":    "INV-ANCHOR-002",
			"vendor_id":     anchorVendor,
			"invoice_date":  "2025-08-14T00:00:00Z",
			"amount":        4875.33,
			"currency":      "USD",
			"po_id":         "PO-8123",
			"receipt_id":    "RCPT-9451",
			"status":        "Paid",
		},
	}

	noPO := record.Record{
		"id":            engagementID + ":INV-ANCHOR-NOPO",
		"type":          "invoice",
		"engagement_id": engagementID,
		"invoice_id":    "INV-ANCHOR-NOPO",
		"vendor_id":     vendors[1]["vendor_id"],
		"invoice_date":  "2025-09-05T00:00:00Z",
		"amount":        9900.00,
		"currency":      "USD",
		"status":        "Paid",
	}

	invoices = append(append(append([]record.Record{}, dupPair...), noPO), invoices...)

	payments = append(payments,
		anchorPayment(engagementID, "INV-ANCHOR-001", anchorVendor, "2025-08-20T00:00:00Z", 4875.33, "ACH"),
		anchorPayment(engagementID, "INV-ANCHOR-002", anchorVendor, "2025-08-22T00:00:00Z", 4875.33, "ACH"),
		anchorPayment(engagementID, "INV-ANCHOR-NOPO", vendors[1]["vendor_id"], "2025-09-18T00:00:00Z", 9900.00, "Wire"),
	)

	return invoices, payments
}

func anchorPayment(engagementID, invoiceID string, vendorID any, paidAt string, amount float64, method string) record.Record {
	return record.Record{
		"id":            fmt.Sprintf("%s:PAY-%s", engagementID, invoiceID),
		"type":          "payment",
		"engagement_id": engagementID,
		"payment_id":    "PAY-" + invoiceID,
		"invoice_id":    invoiceID,
		"vendor_id":     vendorID,
		"paid_at":       paidAt,
		"amount":        amount,
		"method":        method,
	}
}

func utcISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z07:00")
}
