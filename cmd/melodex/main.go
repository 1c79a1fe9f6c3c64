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
	"time"

	"github.com/prompt-general/melodex/internal/api"
	"github.com/prompt-general/melodex/internal/config"
	"github.com/prompt-general/melodex/internal/graph"
	"github.com/prompt-general/melodex/internal/health"
	"github.com/prompt-general/melodex/internal/ingest"
	"github.com/prompt-general/melodex/internal/llm"
	"github.com/prompt-general/melodex/internal/query"
	"github.com/prompt-general/melodex/internal/session"
	"github.com/prompt-general/melodex/internal/vector"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "config/config.yaml", "Configuration file path")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		runIngest   = flag.Bool("ingest", false, "Run the ingestion pipeline once and exit")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	if *showVersion {
		printVersion()
		return
	}

	log.Printf("Starting Melodex v%s (commit: %s, built: %s)", version, commit, date)

	if os.Getenv("CONFIG_PATH") == "" {
		os.Setenv("CONFIG_PATH", *configFile)
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize graph store
	graphStore, err := graph.NewNeo4jStore(cfg.Graph)
	if err != nil {
		log.Fatalf("Failed to initialize graph store: %v", err)
	}
	defer graphStore.Close()

	// Initialize vector index
	vectorIndex, err := vector.NewPGVectorIndex(ctx, cfg.Vector)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}
	defer vectorIndex.Close()

	llmClient := llm.NewClient(cfg.LLM)

	// Kafka is optional: without brokers the pipeline still runs, it just
	// does not publish ingestion events.
	var producer ingest.Producer
	if p, err := ingest.NewKafkaProducer(cfg.Kafka); err != nil {
		log.Printf("Ingestion events disabled: %v", err)
	} else {
		producer = p
		defer producer.Close()
	}

	uploader := ingest.NewUploader(graphStore, vectorIndex, llmClient, producer, cfg.Pipeline)

	if *runIngest {
		result := uploader.Run(ctx)
		log.Printf("Ingestion finished: status=%s count=%d failed=%d", result.Status, result.Count, result.Failed)
		return
	}

	sessions := session.NewStore(cfg.Pipeline.SessionWindow)
	pipeline := query.NewPipeline(sessions, llmClient, graphStore, llmClient, vectorIndex, query.PipelineOptions{
		CallTimeout:  cfg.Pipeline.CallTimeout,
		FallbackTopK: cfg.Pipeline.FallbackTopK,
	})

	checker := health.NewChecker()
	checker.Register(health.CheckFunc{CheckName: "neo4j", Fn: graphStore.Ping})
	checker.Register(health.CheckFunc{CheckName: "pgvector", Fn: vectorIndex.Ping})
	checker.Register(health.CheckFunc{CheckName: "articles-file", Fn: func(context.Context) error {
		_, err := os.Stat(cfg.Pipeline.ArticlesFile)
		return err
	}})

	gateway := api.NewGateway(cfg.API, pipeline, sessions, graphStore, uploader, checker)

	go func() {
		if err := gateway.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API gateway failed: %v", err)
		}
	}()

	waitForShutdown(cancel, gateway)
}

func printHelp() {
	fmt.Printf(`Melodex - Music News Knowledge Graph Assistant

Usage:
  melodex [flags]

Flags:
  -config string
        Configuration file path (default "config/config.yaml")
  -ingest
        Run the ingestion pipeline once and exit
  -version
        Show version information
  -help
        Show this help message

Examples:
  melodex                                    # Start with default config
  melodex -config config/production.yaml     # Start with production config
  melodex -ingest                            # Ingest today's articles and exit
`)
}

func printVersion() {
	fmt.Printf("Melodex version %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Built: %s\n", date)
}

func waitForShutdown(cancel context.CancelFunc, gateway *api.Gateway) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		log.Printf("Error during gateway shutdown: %v", err)
	}

	cancel()
	log.Println("Melodex stopped")
}
