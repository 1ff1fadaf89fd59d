package config

import "testing"

func TestValidate_MissingIndexAddrs(t *testing.T) {
	cfg := Config{
		Index: IndexConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing index addrs")
	}
}

func TestValidate_InvalidOpsPort(t *testing.T) {
	cfg := Config{
		Index: IndexConfig{Addrs: []string{"localhost:6379"}},
		Ops:   OpsConfig{Port: 70000},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid ops port")
	}
}

func TestValidate_TopKExceedsMax(t *testing.T) {
	cfg := Config{
		Index:  IndexConfig{Addrs: []string{"localhost:6379"}},
		Search: SearchConfig{DefaultTopK: 100, MaxTopK: 50},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when default_top_k exceeds max_top_k")
	}
}

func TestValidate_LimitExceedsMax(t *testing.T) {
	cfg := Config{
		Index:  IndexConfig{Addrs: []string{"localhost:6379"}},
		Search: SearchConfig{DefaultTopK: 5, MaxTopK: 50},
		Query:  QueryConfig{DefaultLimit: 5000, MaxLimit: 1000},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.MCP.Transport != "stdio" {
		t.Errorf("expected MCP.Transport='stdio', got %q", cfg.MCP.Transport)
	}
	if cfg.Records.Path != "data/auditscope.db" {
		t.Errorf("expected Records.Path='data/auditscope.db', got %q", cfg.Records.Path)
	}
	if cfg.Index.Name != "auditscope:policies:idx" {
		t.Errorf("expected Index.Name='auditscope:policies:idx', got %q", cfg.Index.Name)
	}
	if cfg.Index.KeyPrefix != "auditscope:policies:" {
		t.Errorf("expected Index.KeyPrefix='auditscope:policies:', got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Index.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Index.ReadinessTimeout)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.DefaultTopK != 5 {
		t.Errorf("expected DefaultTopK=5, got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Search.MaxTopK != 50 {
		t.Errorf("expected MaxTopK=50, got %d", cfg.Search.MaxTopK)
	}
	if cfg.Query.DefaultLimit != 200 {
		t.Errorf("expected DefaultLimit=200, got %d", cfg.Query.DefaultLimit)
	}
	if cfg.Query.MaxLimit != 1000 {
		t.Errorf("expected MaxLimit=1000, got %d", cfg.Query.MaxLimit)
	}
	if cfg.Ops.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.Ops.ShutdownSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Records: RecordsConfig{Path: "/var/lib/auditscope/records.db"},
		Index:   IndexConfig{Name: "custom:idx", KeyPrefix: "custom:", HNSWM: 16, HNSWEFConstruct: 200},
		Search:  SearchConfig{DefaultTopK: 10, MaxTopK: 20},
		Query:   QueryConfig{DefaultLimit: 50, MaxLimit: 100},
	}
	cfg.ApplyDefaults()

	if cfg.Records.Path != "/var/lib/auditscope/records.db" {
		t.Errorf("expected Records.Path unchanged, got %q", cfg.Records.Path)
	}
	if cfg.Index.Name != "custom:idx" {
		t.Errorf("expected Index.Name='custom:idx', got %q", cfg.Index.Name)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Query.DefaultLimit != 50 {
		t.Errorf("expected DefaultLimit=50, got %d", cfg.Query.DefaultLimit)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AUDITSCOPE_TEST_KEY", "secret")

	in := []byte("api_key: ${AUDITSCOPE_TEST_KEY}\nmodel: ${AUDITSCOPE_TEST_MODEL:-text-embedding-3-small}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: text-embedding-3-small\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}
