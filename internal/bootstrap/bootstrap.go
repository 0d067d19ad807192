package bootstrap

import (
	"context"
	"fmt"

	"github.com/walterneylp/process-doc/internal/config"
	"github.com/walterneylp/process-doc/internal/core/ports"
	"github.com/walterneylp/process-doc/internal/core/usecase"
	"github.com/walterneylp/process-doc/internal/infrastructure/llm/openai"
	"github.com/walterneylp/process-doc/internal/infrastructure/notify"
	"github.com/walterneylp/process-doc/internal/infrastructure/queue/nats"
	"github.com/walterneylp/process-doc/internal/infrastructure/repository/postgres"
	"github.com/walterneylp/process-doc/internal/infrastructure/resilience"
	"github.com/walterneylp/process-doc/internal/infrastructure/schemadef"
	"github.com/walterneylp/process-doc/internal/infrastructure/schemaval"
	"github.com/walterneylp/process-doc/internal/infrastructure/storage/localfs"
	"github.com/walterneylp/process-doc/internal/infrastructure/textextract"
	"github.com/walterneylp/process-doc/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.WorkerMetrics

	Queue ports.MessageQueue

	IngestUC  ports.EmailIngestor
	EmailUC   ports.EmailProcessor
	ProcessUC ports.DocumentProcessor
	ReviewUC  ports.ReviewApprover

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	emails := postgres.NewEmailRepository(db)
	tenants := postgres.NewTenantRepository(db)
	deadLetters := postgres.NewDeadLetterRepository(db)
	audit := postgres.NewAuditLogRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Subjects{
		MailFetched:    cfg.NATSSubjectMailFetched,
		EmailReceived:  cfg.NATSSubjectEmailReceived,
		DocumentQueued: cfg.NATSSubjectDocumentQueued,
	}, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	provider := openai.NewWithOptions(cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
		RequestsPerSecond:  cfg.OpenAIRequestsPerSecond,
		Burst:              cfg.OpenAIBurst,
		ResilienceExecutor: executor,
	})

	builtins, err := schemadef.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load builtin schemas: %w", err)
	}
	registry := usecase.NewSchemaRegistry(tenants, builtins)
	validator := schemaval.New()

	text := textextract.New()
	inferrer := textextract.NewTypeInferrer()

	classifier := usecase.NewLLMClassifier(provider)
	extractor := usecase.NewFieldExtractor(registry, provider, validator)

	emailSender := notify.NewEmailSender(cfg.ResendAPIKey, cfg.ResendFrom)
	webhookSender := notify.NewWebhookSender(executor)

	workerMetrics := metrics.NewWorkerMetrics("worker")

	ingestUC := usecase.NewIngestEmailUseCase(emails, storage, queue, audit)
	emailUC := usecase.NewProcessEmailUseCase(emails, docs, tenants, queue, inferrer)
	processUC := usecase.NewProcessDocumentUseCase(
		docs, emails, tenants, deadLetters, audit,
		classifier, extractor, text, storage, emailSender, webhookSender,
		workerMetrics,
		usecase.Thresholds{
			ShortCircuit: cfg.RuleShortCircuitConfidence,
			Review:       cfg.ReviewConfidenceThreshold,
		},
	)
	reviewUC := usecase.NewReviewUseCase(docs, audit)

	return &App{
		Config:  cfg,
		Metrics: workerMetrics,

		Queue: queue,

		IngestUC:  ingestUC,
		EmailUC:   emailUC,
		ProcessUC: processUC,
		ReviewUC:  reviewUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
