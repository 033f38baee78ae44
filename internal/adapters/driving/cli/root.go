// Package cli implements the tipitaka command-line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/ai/localai"
	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/config/file"
	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/models"
	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/storage/sqlite"
	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
	"github.com/aaweerawat2/TipitakaAi/internal/core/services"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose bool
	flagConfig  string
)

// Application state built by ensureApp.
var (
	cfg             *file.Config
	store           *sqlite.Store
	lifecycle       *services.ModelLifecycle
	watcher         *models.Watcher
	queryService    driving.QueryService
	modelService    driving.ModelService
	documentService driving.DocumentService
	voiceService    *services.Voice
)

var rootCmd = &cobra.Command{
	Use:   "tipitaka",
	Short: "Offline question answering over the Tipitaka corpus",
	Long: `Tipitaka answers questions about the Thai Buddhist canon entirely
on-device. Answers are grounded in retrieved canon passages and cite
their sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.tipitaka/config.toml)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// ensureApp builds the application graph on first use. Commands that
// need no services (version, help) never trigger it.
func ensureApp() error {
	if queryService != nil {
		return nil
	}

	var err error
	cfg, err = file.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	client := localai.NewClient(localai.Config{
		BaseURL: cfg.Runtime.BaseURL,
		Timeout: runtimeTimeout(),
	})
	loader := localai.NewLoader(client)

	lifecycle = services.NewModelLifecycle(cfg.Memory.BudgetMB, loader, store.ModelCatalog())
	if err := registerModels(); err != nil {
		return err
	}

	watcher = models.NewWatcher(cfg.ModelsDir, lifecycle)
	if err := watcher.Sync(); err != nil {
		logger.Warn("Model directory scan failed: %v", err)
	}

	embedder := localai.NewEmbeddingProvider(client, cfg.Models.Embedding.ID, cfg.Models.EmbeddingDimensions)
	generator := localai.NewGenerationProvider(client, cfg.Models.Generation.ID)
	stt := localai.NewSpeechToTextProvider(client, cfg.Models.SpeechToText.ID)
	tts := localai.NewSpeechSynthesisProvider(client, cfg.Models.SpeechSynthesis.ID, cfg.Models.Voice)

	retrieval := services.NewRetrieval(store, lifecycle, embedder)
	synthesis := services.NewSynthesis(lifecycle, generator, 0, 0)
	orchestrator := services.NewOrchestrator(retrieval, synthesis, lifecycle, store)

	queryService = orchestrator
	modelService = lifecycle
	documentService = services.NewImporter(store, lifecycle, embedder)
	voiceService = services.NewVoice(orchestrator, lifecycle, stt, tts)

	return nil
}

// registerModels catalogues the configured models with the lifecycle
// controller.
func registerModels() error {
	configured := []struct {
		mc   file.ModelConfig
		kind domain.ModelKind
	}{
		{cfg.Models.Generation, domain.ModelKindGeneration},
		{cfg.Models.Embedding, domain.ModelKindEmbedding},
		{cfg.Models.SpeechToText, domain.ModelKindSpeechToText},
		{cfg.Models.SpeechSynthesis, domain.ModelKindSpeechSynthesis},
	}

	for _, m := range configured {
		if m.mc.ID == "" {
			continue
		}
		err := lifecycle.Register(domain.ModelDescriptor{
			ID:        m.mc.ID,
			Kind:      m.kind,
			RAMCostMB: m.mc.RAMMB,
		})
		if err != nil {
			return fmt.Errorf("registering model %s: %w", m.mc.ID, err)
		}
	}
	return nil
}

// queryDefaults fills unset query options from the config file. Flag
// values already present win; anything still unset after this falls
// back to the engine defaults.
func queryDefaults(opts domain.QueryOptions) domain.QueryOptions {
	if cfg == nil {
		return opts
	}
	if opts.TopK == 0 {
		opts.TopK = cfg.Query.TopK
	}
	if opts.Threshold == 0 {
		opts.Threshold = cfg.Query.Threshold
	}
	if opts.MaxContextTokens == 0 {
		opts.MaxContextTokens = cfg.Query.MaxTokens
	}
	return opts
}

// runtimeTimeout converts the configured timeout to a duration.
// Zero lets the client use its own default.
func runtimeTimeout() time.Duration {
	if cfg.Runtime.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.Runtime.TimeoutSeconds) * time.Second
}

// closeApp releases application resources.
func closeApp() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
		store = nil
	}
}
