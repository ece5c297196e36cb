package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ai-menu-assistant/internal/config"
	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/metrics"
	"ai-menu-assistant/internal/notify"
	"ai-menu-assistant/internal/oracle"
	"ai-menu-assistant/internal/prefs"
	"ai-menu-assistant/internal/ui"
	"ai-menu-assistant/internal/workflow"
)

const defaultMetricsRelPath = ".config/ai-menu-assistant/metrics.db"

// newRunner builds the workflow Runner with all collaborators. The returned
// cleanup function closes the oracle backend and the metrics store.
func newRunner(ctx context.Context) (*workflow.Runner, func(), error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := prefs.NewStore(cfg.PreferencesPath)
	if err != nil {
		return nil, nil, err
	}

	client := dietapi.NewClient(cfg)

	var backend oracle.Backend
	switch cfg.OracleProvider {
	case config.ProviderGemini:
		backend, err = oracle.NewGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
	default:
		backend = oracle.NewOpenAIBackend(cfg)
	}

	notifier, err := notify.NewNotifier(cfg)
	if err != nil {
		log.Printf("Warning: telegram notifications disabled: %v", err)
		notifier = nil
	}

	metricsStore, err := openMetrics(cfg)
	if err != nil {
		log.Printf("Warning: oracle metrics disabled: %v", err)
		metricsStore = nil
	}

	runner := workflow.NewRunner(client, store, oracle.NewAdapter(backend), ui.NewPrompter(), notifier, metricsStore, cfg.OracleProvider)

	cleanup := func() {
		if closer, ok := backend.(oracle.Closer); ok {
			closer.Close()
		}
		if metricsStore != nil {
			metricsStore.Close()
		}
	}
	return runner, cleanup, nil
}

func openMetrics(cfg *config.Config) (*metrics.Store, error) {
	path := cfg.MetricsDBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, defaultMetricsRelPath)
	}
	return metrics.NewStore(path)
}
