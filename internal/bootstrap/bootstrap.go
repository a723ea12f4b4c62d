package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/phraseindex"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
	"github.com/kirillkom/friendsfixer/internal/core/usecase"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/kbloader"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/llm/echo"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/resilience"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/friendsfixer/internal/observability/tracing"
)

// Role selects which parts of the graph a process needs.
type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
	RoleMCP    Role = "mcp"
)

const Version = "0.3.0"

type Options struct {
	// OnBreakerChange is forwarded to the resilience executor.
	OnBreakerChange func(operation, from, to string)
}

type App struct {
	Config config.Config

	// Queue is nil unless the postgres phrase source is configured.
	Queue ports.MessageQueue

	Index     ports.IndexReloader
	CorrectUC *usecase.CorrectUseCase
	UploadUC  ports.PhraseUploader
	ImportUC  ports.PhraseImporter

	closers []func()
}

func New(ctx context.Context, cfg config.Config, role Role, opts Options) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if cfg.TracingEnabled {
		shutdown, err := tracing.InitProvider("friendsfixer-"+string(role), Version, nil)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		app.onClose(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		})
	}

	resCfg := resilience.DefaultConfig()
	resCfg.OnBreakerChange = opts.OnBreakerChange
	executor := resilience.NewExecutor(resCfg)

	source, repo, err := app.phraseSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Every role that reads from postgres listens for reloads; only api and
	// worker handle uploads.
	if repo != nil {
		queue, err := nats.New(cfg.NATSURL, nats.Subjects{
			Import: cfg.NATSImportSubject,
			Reload: cfg.NATSReloadSubject,
		}, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.onClose(queue.Close)
		app.Queue = queue
	}
	if repo != nil && role != RoleMCP {
		storage, err := localfs.New(cfg.StoragePath, cfg.UploadMaxBytes)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		app.UploadUC = usecase.NewUploadPhrasesUseCase(storage, app.Queue)
		app.ImportUC = usecase.NewImportPhrasesUseCase(storage, kbloader.NewParser(), repo, app.Queue)
	}

	if role == RoleWorker {
		return app, nil
	}

	holder := phraseindex.NewHolder(nil)
	index := usecase.NewIndexService(source, holder, cfg.IndexMaxDF)
	if err := index.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("build phrase index: %w", err)
	}

	generator, err := newGenerator(cfg, executor)
	if err != nil {
		return nil, err
	}
	retriever := phraseindex.NewRetriever(holder, cfg.RAGTopK, cfg.RAGMinSim)
	app.Index = index
	app.CorrectUC = usecase.NewCorrectUseCase(retriever, generator, CorrectionConfig(cfg))
	return app, nil
}

// phraseSource returns the repository as well when phrases live in postgres.
func (a *App) phraseSource(ctx context.Context, cfg config.Config) (ports.PhraseSource, ports.PhraseRepository, error) {
	file := kbloader.NewFileSource(cfg.KBPath)
	if cfg.PhraseSource != "postgres" {
		return file, nil, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	a.onClose(func() { _ = db.Close() })

	repo := postgres.NewPhraseRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	if cfg.SeedFromKBFile {
		if err := seedPhrases(ctx, repo, file); err != nil {
			return nil, nil, err
		}
	}
	return repo, repo, nil
}

// seedPhrases fills an empty phrase table from the knowledge-base file.
func seedPhrases(ctx context.Context, repo ports.PhraseRepository, file ports.PhraseSource) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count phrases: %w", err)
	}
	if n > 0 {
		return nil
	}
	entries, err := file.LoadPhrases(ctx)
	if domain.IsKind(err, domain.ErrPhraseSourceNotFound) {
		slog.Warn("phrase_seed_skipped", "reason", "knowledge base file not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load seed phrases: %w", err)
	}
	if err := repo.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("seed phrases: %w", err)
	}
	slog.Info("phrases_seeded", "entries", len(entries))
	return nil
}

func newGenerator(cfg config.Config, executor *resilience.Executor) (ports.CandidateGenerator, error) {
	timeout := time.Duration(cfg.GeneratorTimeoutSeconds) * time.Second
	switch cfg.Generator {
	case "echo":
		return echo.NewGenerator(), nil
	case "openai":
		gen, err := openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: timeout,
			Sampling: openai.Sampling{
				MaxNewTokens: cfg.MaxNewTokens,
				Temperature:  cfg.Temperature,
				TopP:         cfg.TopP,
				Seed:         cfg.Seed,
			},
			Executor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai generator: %w", err)
		}
		return gen, nil
	case "ollama":
		return ollama.NewGenerator(cfg.OllamaURL, cfg.OllamaGenModel, ollama.Options{
			Sampling: ollama.Sampling{
				MaxNewTokens:      cfg.MaxNewTokens,
				Temperature:       cfg.Temperature,
				TopP:              cfg.TopP,
				TopK:              cfg.TopK,
				RepetitionPenalty: cfg.RepetitionPenalty,
				Seed:              cfg.Seed,
			},
			Timeout:   timeout,
			Executor:  executor,
			MaxFanOut: cfg.GeneratorFanOut,
		}), nil
	default:
		return nil, errors.New("unknown generator " + cfg.Generator)
	}
}

// CorrectionConfig maps service configuration onto the pipeline tuning.
func CorrectionConfig(cfg config.Config) usecase.CorrectionConfig {
	return usecase.CorrectionConfig{
		TopK:              cfg.RAGTopK,
		MinSim:            cfg.RAGMinSim,
		PostMinSim:        cfg.PostMinSim,
		KNoteSimThreshold: cfg.KNoteSimThreshold,
		Connectors:        cfg.KNoteConnectors,
		EnforceKNote:      cfg.KNoteEnforce,
		RerankN:           cfg.RerankN,
		Stage:             domain.ParseStage(cfg.RAGStage),
		BlockBadTokens:    cfg.BlockBadTokens,
	}
}

// WatchIndexReload rebuilds the index on every reload event until ctx is
// done, calling after once each rebuild succeeds. Without a queue it
// returns nil at once.
func (a *App) WatchIndexReload(ctx context.Context, after func(context.Context)) error {
	if a.Queue == nil || a.Index == nil {
		return nil
	}
	return a.Queue.SubscribeIndexReload(ctx, func(handlerCtx context.Context) error {
		if err := a.Index.Rebuild(handlerCtx); err != nil {
			return err
		}
		if after != nil {
			after(handlerCtx)
		}
		return nil
	})
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
