package db

import "testing"

func TestIndexBuilder_PolicySchema(t *testing.T) {
	def, err := NewIndex("auditscope:policies:idx").
		Prefix("auditscope:policies:").
		Tag("doc_type").
		Tag("engagement_id").
		Tag("policy_id").
		Tag("section").
		Tag("effective_date").
		Text("content").
		VectorHNSW("content_vector", 3072, DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(def.Fields) != 7 {
		t.Fatalf("fields = %d, want 7", len(def.Fields))
	}
	if def.Fields[6].Type != IndexFieldVector || def.Fields[6].VectorDim != 3072 {
		t.Errorf("vector field = %+v", def.Fields[6])
	}
	want := "FT.CREATE auditscope:policies:idx ON HASH PREFIX auditscope:policies: " +
		"SCHEMA doc_type TAG engagement_id TAG policy_id TAG section TAG " +
		"effective_date TAG content TEXT content_vector VECTOR HNSW"
	if got := def.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	if _, err := NewIndex("").Tag("a").Build(); err == nil {
		t.Error("empty index name accepted")
	}
	if _, err := NewIndex("idx").Build(); err == nil {
		t.Error("empty schema accepted")
	}
	if _, err := NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0).Build(); err == nil {
		t.Error("non-positive vector dim accepted")
	}
	if _, err := NewIndex("idx").Tag("").Build(); err == nil {
		t.Error("empty field name accepted")
	}
}
