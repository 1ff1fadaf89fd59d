package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/auditscope/auditscope/internal/config"
	dbRedis "github.com/auditscope/auditscope/internal/db/redis"
	"github.com/auditscope/auditscope/internal/domain"
	logpkg "github.com/auditscope/auditscope/internal/logger"
	"github.com/auditscope/auditscope/internal/metrics"
	"github.com/auditscope/auditscope/internal/repository/embcache"
	"github.com/auditscope/auditscope/internal/repository/policyindex"
	recordsrepo "github.com/auditscope/auditscope/internal/repository/records"
	mcpTransport "github.com/auditscope/auditscope/internal/transport/mcp"
	openaiEmb "github.com/auditscope/auditscope/internal/transport/openai"
	"github.com/auditscope/auditscope/internal/transport/ops"
	healthuc "github.com/auditscope/auditscope/internal/usecase/health"
	policysearchuc "github.com/auditscope/auditscope/internal/usecase/policysearch"
	recordsuc "github.com/auditscope/auditscope/internal/usecase/records"
	"github.com/auditscope/auditscope/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting auditscope MCP server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("mcp_transport", cfg.MCP.Transport),
		zap.String("records_path", cfg.Records.Path),
		zap.Strings("index_addrs", cfg.Index.Addrs),
	)

	// Policy index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Password: cfg.Index.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterToolMetrics()

	queryEmbedder := buildQueryEmbedder(cfg.Embedding, store, logger)

	// Record store gateway; the SQLite handle opens lazily on first use
	gateway := recordsrepo.New(recordsrepo.Config{Path: cfg.Records.Path})
	defer func() { _ = gateway.Close() }()

	indexRepo := policyindex.New(store, policyindex.Config{
		IndexName:       cfg.Index.Name,
		KeyPrefix:       cfg.Index.KeyPrefix,
		VectorDims:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	recordsSvc := recordsuc.New(gateway, cfg.Query.DefaultLimit)
	searchSvc := policysearchuc.New(indexRepo, queryEmbedder, cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	healthSvc := healthuc.New(gateway, store, newEmbeddingHealthChecker(queryEmbedder))

	mcpSrv := mcpTransport.NewServer(mcpTransport.ServerConfig{
		Records:                recordsSvc,
		Policies:               searchSvc,
		Version:                version.Version,
		PreferServerVectorizer: cfg.MCP.PreferServerVectorizer,
		Logger:                 logger,
	})

	// Operational endpoints on their own port
	opsSrv := ops.NewHTTPServer(cfg.Ops, ops.NewRouter(healthSvc, logger))
	go func() {
		logger.Info("Starting ops HTTP server", zap.String("addr", opsSrv.Addr))
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ops HTTP server error", zap.Error(err))
		}
	}()

	serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpTransport.Serve(serveCtx, mcpSrv, cfg.MCP.Transport, cfg.MCP.Port, logger); err != nil {
		logger.Error("MCP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Ops.ShutdownSec)*time.Second)
	defer cancel()

	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during ops shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func buildQueryEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(
		base, store,
		time.Duration(cfg.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)

	// Instruction prefix outermost so the cache key includes it
	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}
	return embedder
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
