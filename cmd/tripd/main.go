// Tripd is an itinerary enrichment daemon.
//
// It serves a POI extraction engine over HTTP, stores trip itineraries,
// and indexes enriched trips for semantic search.
//
// Configuration is loaded from a YAML file plus TRIPD_* environment
// variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	tripd
//
//	# Start with a config file; the file is watched for changes
//	tripd -config /etc/tripd/config.yaml
//
//	# Configure via environment
//	TRIPD_SERVER_PORT=9090 tripd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tripweave/tripd/internal/auth"
	"github.com/tripweave/tripd/internal/config"
	"github.com/tripweave/tripd/internal/embeddings"
	"github.com/tripweave/tripd/internal/enrichment"
	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/httpapi"
	"github.com/tripweave/tripd/internal/logging"
	"github.com/tripweave/tripd/internal/trips"
	"github.com/tripweave/tripd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (watched for changes)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  tripd [-config FILE]   Start the tripd daemon\n")
			fmt.Fprintf(os.Stderr, "  tripd version          Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("tripd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the tripd server and blocks until the context is
// cancelled. It loads configuration, wires the extraction engine,
// trip store, optional enrichment pipeline, and the HTTP API, then
// performs a graceful shutdown.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting tripd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Float64("confidence_threshold", cfg.Extraction.ConfidenceThreshold),
	)

	extractor := extraction.NewService(extraction.Config{
		ConfidenceThreshold: cfg.Extraction.ConfidenceThreshold,
	}, logger)

	store := trips.NewMemoryStore()

	enricher, err := initEnricher(cfg, store, extractor, logger)
	if err != nil {
		return fmt.Errorf("initializing enrichment: %w", err)
	}

	var sessions *auth.Manager
	if cfg.Auth.Enabled {
		sessions = auth.NewManager(cfg.Auth.SessionTTL)
	}

	srv, err := httpapi.NewServer(store, extractor, enricher, sessions, logger, &httpapi.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		AuthEnabled: cfg.Auth.Enabled,
		RateLimit: httpapi.RateLimitConfig{
			Enabled: cfg.RateLimit.Enabled,
			RPS:     cfg.RateLimit.RPS,
			Burst:   cfg.RateLimit.Burst,
		},
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	// Hot-reload the extraction threshold when the config file changes.
	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, logger, func(next *config.Config) {
				updateErr := extractor.UpdateConfig(map[string]any{
					"confidence_threshold": next.Extraction.ConfidenceThreshold,
				})
				if updateErr != nil {
					logger.Warn("rejected reloaded extraction config", zap.Error(updateErr))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initEnricher wires the embeddings client and vector store when an
// embeddings endpoint is configured. Without one, enrichment and
// search endpoints report unavailable while extraction keeps working.
func initEnricher(cfg *config.Config, store trips.Store, extractor *extraction.Service, logger *zap.Logger) (*enrichment.Enricher, error) {
	if cfg.Embeddings.BaseURL == "" {
		logger.Info("embeddings endpoint not configured, enrichment disabled")
		return nil, nil
	}

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embeddings client: %w", err)
	}

	vectors, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       cfg.VectorStore.Path,
		Collection: cfg.VectorStore.Collection,
		VectorSize: cfg.VectorStore.VectorSize,
	}, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	return enrichment.NewEnricher(store, extractor, vectors, logger), nil
}
