// Package record defines the schema-agnostic record type and the entity
// descriptors for the structured financial-records store.
package record

// Record is an opaque field-to-value mapping. The core never validates
// business fields; it reasons only about key identity and filter predicates.
type Record map[string]any

// Entity describes one record collection: its store name, the business key
// field that pairs with engagement_id to form the composite key, and the
// date field used by range filters.
type Entity struct {
	Collection string
	KeyField   string
	DateField  string
}

// The three structured entity kinds. Every record in each collection
// carries exactly one engagement_id used as the tenant partition.
var (
	Invoices = Entity{Collection: "invoices", KeyField: "invoice_id", DateField: "invoice_date"}
	Vendors  = Entity{Collection: "vendors", KeyField: "vendor_id"}
	Payments = Entity{Collection: "payments", KeyField: "payment_id", DateField: "paid_at"}
)

// TenantField is the partition field injected first into every query.
const TenantField = "engagement_id"
