package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/relevohq/relevo/internal/config"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/internal/events"
	"github.com/relevohq/relevo/internal/providers/backend"
	"github.com/relevohq/relevo/internal/providers/llm"
	"github.com/relevohq/relevo/internal/service/completion"
	"github.com/relevohq/relevo/internal/service/detection"
	"github.com/relevohq/relevo/internal/service/enrichment"
	"github.com/relevohq/relevo/internal/service/extraction"
	"github.com/relevohq/relevo/internal/service/interview"
	"github.com/relevohq/relevo/internal/storage/sqlite"
	"github.com/relevohq/relevo/internal/transport/console"
	"github.com/relevohq/relevo/pkg/log"
	"github.com/relevohq/relevo/pkg/srv"
)

// deps holds everything both binaries share: configuration, storage, the
// directory client, the model provider, and the event bus.
type deps struct {
	app       *config.AppConfig
	db        *sql.DB
	directory *backend.Client
	provider  core.LLMProvider
	bus       *events.NATSBus
}

func initCore(ctx context.Context) (*deps, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Organization directory client
	backendCfg := config.NewBackendConfig(ctx)
	directory := backend.NewClient(backendCfg, time.Duration(appCfg.CacheTTLSeconds)*time.Second)

	// 4. LLM provider
	llmCfg := config.NewLLMConfig(ctx)
	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 5. Event bus
	bus, err := events.NewNATSBus(config.NewNATSConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to event bus")
	}
	services = append(services, srv.NewCleanup(bus.Close))

	return &deps{
		app:       appCfg,
		db:        db,
		directory: directory,
		provider:  provider,
		bus:       bus,
	}, services
}

// NewServeServices wires the interview agent: enrichment, detection,
// completion, the turn orchestrator, and the console transport.
func NewServeServices(ctx context.Context, stop context.CancelFunc, employeeID, organizationID, language string) []srv.Service {
	d, services := initCore(ctx)

	interviewsRepo := sqlite.NewInterviewsRepo(d.db)
	messagesRepo := sqlite.NewMessagesRepo(d.db)
	refsRepo := sqlite.NewReferencesRepo(d.db)

	enricher := enrichment.NewService(d.directory, interviewsRepo, enrichment.Config{
		MaxProcesses: d.app.MaxContextProcesses,
		Enabled:      d.app.EnrichmentEnabled,
	})

	detectionCfg := config.NewDetectionConfig(ctx)
	agent := detection.NewAgent(d.provider, d.directory, refsRepo, interviewsRepo, detectionCfg)

	controller := completion.NewController(d.app.MaxSafetyTurns)

	turns := interview.NewService(
		d.provider,
		agent,
		controller,
		enricher,
		interviewsRepo,
		messagesRepo,
		refsRepo,
		d.bus,
		d.app.DefaultLanguage,
	)

	services = append(services, console.NewService(turns, employeeID, organizationID, language, stop))
	return services
}

// NewWorkerServices wires the offline extraction worker.
func NewWorkerServices(ctx context.Context) []srv.Service {
	d, services := initCore(ctx)

	messagesRepo := sqlite.NewMessagesRepo(d.db)
	refsRepo := sqlite.NewReferencesRepo(d.db)

	worker := extraction.NewWorker(d.bus, d.provider, d.directory, messagesRepo, refsRepo)
	services = append(services, worker)
	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
