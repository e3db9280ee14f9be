package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/camdenlaw/casecore/internal/config"
	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/ports"
	"github.com/camdenlaw/casecore/internal/core/usecase"
	rediscache "github.com/camdenlaw/casecore/internal/infrastructure/cache/redis"
	"github.com/camdenlaw/casecore/internal/infrastructure/extractor/doctext"
	"github.com/camdenlaw/casecore/internal/infrastructure/llm/ollama"
	natsqueue "github.com/camdenlaw/casecore/internal/infrastructure/queue/nats"
	"github.com/camdenlaw/casecore/internal/infrastructure/redact"
	"github.com/camdenlaw/casecore/internal/infrastructure/repository/postgres"
	"github.com/camdenlaw/casecore/internal/infrastructure/resilience"
	"github.com/camdenlaw/casecore/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue

	CoverageUC ports.CoverageService
	StrategyUC ports.StrategyService
	RankingUC  ports.OptionRanker
	SnapshotUC ports.SnapshotBuilder
	ProcessUC  ports.AnalysisProcessor

	closeFn func()
}

// New wires the full engine. meter may be nil; the fallback path then runs
// without measurement.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, meter ports.AnalysisMeter) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	caseRepo := postgres.NewCaseRepository(db)
	if err := caseRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	runStore := postgres.NewAnalysisRunRepository(db)

	cache := rediscache.New(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.CacheKeyNamespace,
		time.Duration(cfg.CacheTTLHours)*time.Hour,
	)
	if err := cache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	extractor := doctext.New(storage)

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	cat, err := catalogue.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}

	inferenceCfg := resilience.DefaultConfig()
	inferenceCfg.RatePerMinute = cfg.InferenceRatePerMinute
	inferenceExecutor := resilience.NewExecutor(inferenceCfg)

	ollamaClient := ollama.New(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		time.Duration(cfg.InferenceTimeoutSeconds)*time.Second,
	)
	inferrer := ollama.NewInferrer(ollamaClient, inferenceExecutor, cat.AngleTypeTags(), cfg.InferenceSnippetChars)

	fallback := usecase.NewGenerativeFallback(redact.New(), cache, inferrer, cat, meter, logger)
	strategyUC := usecase.NewStrategyUseCase(caseRepo, docRepo, cat, fallback, logger)
	policy := usecase.PolicyByName(cfg.RiskPolicy)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		CoverageUC: usecase.NewCoverageUseCase(caseRepo, docRepo),
		StrategyUC: strategyUC,
		RankingUC:  usecase.NewRankingUseCase(strategyUC, cat, policy),
		SnapshotUC: usecase.NewSnapshotUseCase(caseRepo, docRepo, runStore, strategyUC, cat, policy),
		ProcessUC:  usecase.NewProcessAnalysisUseCase(caseRepo, docRepo, extractor, strategyUC, runStore, logger),

		closeFn: func() {
			queue.Close()
			_ = cache.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
