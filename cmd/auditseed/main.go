// Command auditseed provisions the record store and policy index with a
// deterministic demo dataset for one engagement.
package main

import (
	"context"
	"flag"
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
	"github.com/auditscope/auditscope/internal/seed"
	openaiEmb "github.com/auditscope/auditscope/internal/transport/openai"
)

func main() {
	var (
		engagementID string
		vendors      int
		invoices     int
		payRate      float64
		randSeed     int64
	)
	flag.StringVar(&engagementID, "engagement", "eng-001", "engagement (tenant) identifier")
	flag.IntVar(&vendors, "vendors", 50, "number of vendors to generate")
	flag.IntVar(&invoices, "invoices", 400, "number of invoices to generate")
	flag.Float64Var(&payRate, "pay-rate", 0.7, "fraction of invoices that get a payment")
	flag.Int64Var(&randSeed, "seed", seed.DefaultSeed, "random seed")
	flag.Parse()

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

	logger.Info("Seeding demo data",
		zap.String("engagement_id", engagementID),
		zap.Int("vendors", vendors),
		zap.Int("invoices", invoices),
		zap.Float64("pay_rate", payRate),
	)

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

	metrics.RegisterEmbeddingMetrics()

	gateway := recordsrepo.New(recordsrepo.Config{Path: cfg.Records.Path})
	defer func() { _ = gateway.Close() }()

	indexRepo := policyindex.New(store, policyindex.Config{
		IndexName:       cfg.Index.Name,
		KeyPrefix:       cfg.Index.KeyPrefix,
		VectorDims:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	embedder := buildDocumentEmbedder(cfg.Embedding, store, logger)

	ds := seed.Generate(seed.Params{
		EngagementID: engagementID,
		Vendors:      vendors,
		Invoices:     invoices,
		PayRate:      payRate,
		Seed:         randSeed,
	})

	writer := seed.NewWriter(gateway, indexRepo, embedder, logger)
	if err := writer.Write(ctx, ds); err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}

	logger.Info("Seeding complete",
		zap.Int("vendors", len(ds.Vendors)),
		zap.Int("invoices", len(ds.Invoices)),
		zap.Int("payments", len(ds.Payments)),
		zap.Int("policy_snippets", len(ds.Policies)),
	)
}

// buildDocumentEmbedder assembles the chain: OpenAI -> Cached -> Instruction.
func buildDocumentEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.BatchEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	cached := embcache.New(
		base, store,
		time.Duration(cfg.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)

	if cfg.DocumentInstruction != "" {
		return domain.NewInstructionEmbedder(cached, cfg.DocumentInstruction)
	}
	return cached
}
