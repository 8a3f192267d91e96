package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/config"
	"github.com/kailas-cloud/toolsel/internal/db"
	dbRedis "github.com/kailas-cloud/toolsel/internal/db/redis"
	"github.com/kailas-cloud/toolsel/internal/domain"
	domexp "github.com/kailas-cloud/toolsel/internal/domain/experiment"
	"github.com/kailas-cloud/toolsel/internal/domain/sampling"
	logpkg "github.com/kailas-cloud/toolsel/internal/logger"
	"github.com/kailas-cloud/toolsel/internal/metrics"
	"github.com/kailas-cloud/toolsel/internal/repository/embcache"
	"github.com/kailas-cloud/toolsel/internal/repository/querycache"
	"github.com/kailas-cloud/toolsel/internal/repository/toolcache"
	chiTransport "github.com/kailas-cloud/toolsel/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/toolsel/internal/transport/openai"
	"github.com/kailas-cloud/toolsel/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/toolsel/internal/usecase/embedding"
	experimentuc "github.com/kailas-cloud/toolsel/internal/usecase/experiment"
	generationuc "github.com/kailas-cloud/toolsel/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/toolsel/internal/usecase/health"
	"github.com/kailas-cloud/toolsel/internal/usecase/queryset"
	"github.com/kailas-cloud/toolsel/internal/usecase/retrieval"
	"github.com/kailas-cloud/toolsel/internal/version"
)

// app is the composition root shared by the run and check commands.
type app struct {
	cfg    config.Config
	runID  string
	logger *zap.Logger

	store     db.Store // nil for the file driver
	tools     *toolcache.Repo
	queries   *querycache.Repo
	baseEmb   *openaiTransport.Embedder
	docEmb    domain.Embedder
	queryEmb  domain.Embedder
	generator *generationuc.InstrumentedGenerator
	health    *healthuc.Service
}

func newApp(ctx context.Context, cmd *cobra.Command, f runFlags) (*app, error) {
	env := config.GetEnv()

	cfg, err := f.loadConfig(env)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, &cfg)

	runID := uuid.NewString()
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	logger.Info("Starting toolsel",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	metrics.RegisterProviderMetrics()
	metrics.RegisterExperimentMetrics()

	a := &app{cfg: cfg, runID: runID, logger: logger}
	if err := a.openStorage(ctx); err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.buildProviders()
	a.buildHealth()
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// openStorage picks JSON files or a Redis/Valkey store for the tool and query snapshots.
func (a *app) openStorage(ctx context.Context) error {
	sc := a.cfg.Storage
	if !sc.Remote() {
		a.tools = toolcache.NewFile(filepath.Join(sc.Dir, sc.ToolsFile))
		a.queries = querycache.NewFile(filepath.Join(sc.Dir, sc.QueriesFile))
		return nil
	}

	// Valkey speaks the Redis protocol; rueidis serves both.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    sc.Addrs,
		Password: sc.Password,
	})
	if err != nil {
		return fmt.Errorf("create %s store: %w", sc.Driver, err)
	}
	if err := store.WaitForReady(ctx, time.Duration(sc.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return fmt.Errorf("%s not ready: %w", sc.Driver, err)
	}
	a.logger.Info("Connected to database", zap.String("driver", sc.Driver), zap.Strings("addrs", sc.Addrs))

	a.store = store
	a.tools = toolcache.NewKV(store, sc.KeyPrefix+toolcache.DefaultKey)
	a.queries = querycache.NewKV(store, sc.KeyPrefix+querycache.DefaultKey)
	return nil
}

// buildProviders assembles the decorator chains:
// embeddings OpenAI -> Cached -> Instrumented -> Instruction, chat OpenAI -> Instrumented.
func (a *app) buildProviders() {
	ec := a.cfg.Embedding
	a.baseEmb = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     a.logger,
	})

	var emb domain.Embedder = a.baseEmb
	if ec.Cache && a.store != nil {
		emb = embcache.New(a.baseEmb, a.store, embcache.Options{
			KeyPrefix: a.cfg.Storage.KeyPrefix,
			Model:     ec.Model,
			TTL:       time.Duration(ec.CacheTTLHours) * time.Hour,
		}, metrics.EmbeddingCacheTotal, a.logger)
	}
	emb = embeddinguc.NewInstrumentedEmbedder(emb, ec.Provider, ec.Model, a.logger)

	// Instruction prefix is outermost, so cache keys include it.
	a.docEmb = withInstruction(emb, ec.DocumentInstruction)
	a.queryEmb = withInstruction(emb, ec.QueryInstruction)

	lc := a.cfg.LLM
	base := openaiTransport.NewGenerator(&openaiTransport.Config{
		APIKey:      lc.APIKey,
		BaseURL:     lc.BaseURL,
		Model:       lc.Model,
		Temperature: lc.Temperature,
		Provider:    lc.Provider,
		Logger:      a.logger,
	})
	a.generator = generationuc.NewInstrumentedGenerator(base, lc.Provider, lc.Model, a.logger)
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

func (a *app) buildHealth() {
	a.health = healthuc.New(a.runID).
		With("embedding", a.baseEmb).
		With("generation", a.generator)
	if a.store != nil {
		a.health.With("database", healthuc.Ping(a.store))
	}
}

// startStatusServer serves /metrics and /healthz while the run lasts. Returns a stop func.
func (a *app) startStatusServer() func() {
	mc := a.cfg.Metrics
	if mc.Addr == "" {
		return func() {}
	}

	srv := chiTransport.NewServer(mc.Addr, chiTransport.NewRouter(a.health, mc.BearerTokens, a.logger), a.logger)
	srv.Start()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(mc.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Error during shutdown", zap.Error(err))
		}
	}
}

func runExperiment(cmd *cobra.Command, f runFlags) error {
	a, err := newApp(cmd.Context(), cmd, f)
	if err != nil {
		return err
	}
	defer a.close()

	expCfg, err := experimentConfig(a.cfg)
	if err != nil {
		return err
	}
	stop := a.startStatusServer()
	defer stop()

	ctx, usage := domain.NewContextWithUsage(cmd.Context())
	summary, err := a.run(ctx, expCfg)
	if err != nil {
		a.logger.Error("Run failed", zap.Error(err))
		return err
	}

	if err := experimentuc.WriteReport(cmd.OutOrStdout(), expCfg, summary, usage.Snapshot()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// run prepares the corpus and the query set, then evaluates every query.
func (a *app) run(ctx context.Context, cfg domexp.Config) (domexp.Summary, error) {
	ec := a.cfg.Experiment
	rng := sampling.NewSource(cfg.Seed())

	tools := corpus.New(a.tools, a.generator, a.docEmb, rng, a.logger).
		WithThreshold(ec.ToolThreshold).
		WithMaxAttempts(ec.MaxAttempts)
	if len(ec.Categories) > 0 {
		tools.WithCategories(ec.Categories)
	}

	active, err := tools.EnsureSize(ctx, cfg.ToolCount())
	if err != nil {
		return domexp.Summary{}, fmt.Errorf("prepare tools: %w", err)
	}
	embedded, err := tools.EmbedMissing(ctx)
	if err != nil {
		return domexp.Summary{}, fmt.Errorf("embed tools: %w", err)
	}
	a.logger.Info("Tool corpus ready", zap.Int("tools", len(active)), zap.Int("newly_embedded", embedded))

	queries, err := queryset.New(a.queries, a.generator, a.queryEmb, rng, a.logger).
		WithThreshold(ec.QueryThreshold).
		WithMaxAttempts(ec.MaxAttempts).
		WithGroundingSize(ec.GroundingToolCount).
		EnsureSize(ctx, cfg.QueryCount(), tools.Tools())
	if err != nil {
		return domexp.Summary{}, fmt.Errorf("prepare queries: %w", err)
	}
	a.logger.Info("Query set ready", zap.Int("queries", len(queries)))

	selector := retrieval.New(tools, a.queryEmb, a.generator, a.logger)
	results, err := experimentuc.NewRunner(selector, tools, cfg, a.logger).Run(ctx, queries)
	if err != nil {
		return domexp.Summary{}, fmt.Errorf("run experiment: %w", err)
	}

	summary := domexp.Aggregate(results)
	a.logger.Info("Experiment complete",
		zap.Int("total", summary.Total),
		zap.Int("correct", summary.Correct),
		zap.Float64("accuracy", summary.Accuracy),
		zap.Float64("token_reduction", summary.TokenReduction),
	)
	return summary, nil
}

func runCheck(cmd *cobra.Command, f runFlags) error {
	a, err := newApp(cmd.Context(), cmd, f)
	if err != nil {
		return err
	}
	defer a.close()

	report := a.health.Check(cmd.Context())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if report.Status != healthuc.Healthy {
		return fmt.Errorf("health status %s", report.Status)
	}
	return nil
}
