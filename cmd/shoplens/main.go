package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shoplens/shoplens-cli/internal/adapters/driven/ai"
	catalogfile "github.com/shoplens/shoplens-cli/internal/adapters/driven/catalog/file"
	configfile "github.com/shoplens/shoplens-cli/internal/adapters/driven/config/file"
	"github.com/shoplens/shoplens-cli/internal/adapters/driven/storage/memory"
	"github.com/shoplens/shoplens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/cli"
	"github.com/shoplens/shoplens-cli/internal/core/services"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// API keys may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("")
	if err != nil {
		logger.Warn("Prompt store unavailable: %v", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding, store.EmbeddingCache())
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
		embedder = nil
	}
	if embedder != nil {
		defer embedder.Close()
	}

	generator, err := ai.CreateAndValidateGenerationService(&settings.Generation)
	if err != nil {
		logger.Warn("Generation provider unavailable: %v", err)
		generator = nil
	}
	if generator != nil {
		defer generator.Close()
	}

	knowledgeStore := memory.NewKnowledgeStore(settings.Knowledge.MaxProducts)

	svc := cli.Services{
		Settings: settingsService,
		History:  store.ChatHistoryStore(),
		Embedder: embedder,
	}

	// The knowledge side needs a catalog file; until one is configured the
	// settings commands are the only useful surface.
	if settings.Knowledge.CatalogPath != "" {
		catalogSource, err := catalogfile.NewCatalogSource(
			settings.Knowledge.CatalogPath, settings.Knowledge.VectorsPath)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}

		knowledgeService := services.NewKnowledgeService(
			knowledgeStore, catalogSource, embedder, store.CustomProductStore())
		assistantService := services.NewAssistantService(
			knowledgeStore, embedder, generator, store.ChatHistoryStore())
		if promptStore != nil {
			assistantService.SetPromptStore(promptStore)
		}

		svc.Knowledge = knowledgeService
		svc.Assistant = assistantService
		svc.Catalog = catalogSource

		if settings.Knowledge.WatchCatalog {
			go func() {
				if err := knowledgeService.WatchCatalog(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("Catalog watch stopped: %v", err)
				}
			}()
		}
	}

	cli.SetServices(svc)
	cli.SetVersion(version)

	return cli.ExecuteContext(ctx)
}
