package seed

import (
	"fmt"
	"strings"

	"github.com/auditscope/auditscope/internal/domain/policy"
)

type policySection struct {
	policyID      string
	policyName    string
	sectionID     string
	sectionTitle  string
	effectiveDate string
	text          string
}

var policySections = []policySection{
	{
		policyID:      "AP-001",
		policyName:    "Accounts Payable Policy",
		sectionID:     "3.1",
		sectionTitle:  "Three-Way Match",
		effectiveDate: "2025-01-01",
		text: "Invoices should be matched to an approved PO and receiving record " +
			"prior to payment. Exceptions require documented justification.",
	},
	{
		policyID:      "AP-001",
		policyName:    "Accounts Payable Policy",
		sectionID:     "4.2",
		sectionTitle:  "Duplicate Invoice Prevention",
		effectiveDate: "2025-01-01",
		text: "AP must prevent duplicate payments by checking vendor, invoice number, " +
			"invoice date, and amount prior to payment release.",
	},
	{
		policyID:      "AP-002",
		policyName:    "Vendor Master Governance",
		sectionID:     "2.3",
		sectionTitle:  "High Risk Vendor Review",
		effectiveDate: "2025-01-01",
		text: "Vendors classified as High risk require periodic review, including " +
			"validation of bank account changes and business purpose.",
	},
}

func generatePolicySnippets(engagementID string) []policy.Document {
	docs := make([]policy.Document, 0, len(policySections))
	for _, s := range policySections {
		sectionKey := strings.ReplaceAll(s.sectionID, ".", "-")
		docs = append(docs, policy.Document{
			ID:            fmt.Sprintf("doc-policy-%s-%s-%s", engagementID, s.policyID, sectionKey),
			DocType:       "policy_snippet",
			EngagementID:  engagementID,
			PolicyID:      s.policyID,
			Section:       s.sectionTitle,
			EffectiveDate: s.effectiveDate,
			Content: fmt.Sprintf("Policy: %s\nSection: %s\nEffective Date: %s\n\n%s\n",
				s.policyName, s.sectionTitle, s.effectiveDate, s.text),
		})
	}
	return docs
}
