// Package policy defines the policy-document projection returned by hybrid
// search.
package policy

// Document is the fixed field subset projected from an index hit. Fields
// missing from the hit stay at their zero value; a missing field is never
// an error.
type Document struct {
	ID            string  `json:"id"`
	DocType       string  `json:"doc_type"`
	EngagementID  string  `json:"engagement_id"`
	PolicyID      string  `json:"policy_id"`
	Section       string  `json:"section"`
	EffectiveDate string  `json:"effective_date"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
}

// FromFields projects a flat field map plus relevance score into a Document.
func FromFields(id string, score float64, fields map[string]string) Document {
	return Document{
		ID:            id,
		DocType:       fields[FieldDocType],
		EngagementID:  fields[FieldEngagementID],
		PolicyID:      fields[FieldPolicyID],
		Section:       fields[FieldSection],
		EffectiveDate: fields[FieldEffectiveDate],
		Content:       fields[FieldContent],
		Score:         score,
	}
}

// Index field names shared by the seeder, the index schema, and the
// search projection.
const (
	FieldDocType       = "doc_type"
	FieldEngagementID  = "engagement_id"
	FieldPolicyID      = "policy_id"
	FieldSection       = "section"
	FieldEffectiveDate = "effective_date"
	FieldContent       = "content"
	FieldVector        = "content_vector"
)
