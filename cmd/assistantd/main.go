// Command assistantd runs the assistant orchestrator HTTP server: it wires
// the metadata registry, graph store, vector store, LLM client, prompt
// registry, and OTel tracer into the query pipeline and serves it over
// HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/qdrant/go-client/qdrant"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/api"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/collector"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/config"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/cyphergen"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/graphstore"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/metadata"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/observability"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/orchestrator"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/planner"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/promptregistry"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/querycache"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/synthesizer"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/vectorstore"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	log.Printf("Starting %s", version.Full())
	log.Printf("Config directory: %s", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	tracerProvider, err := observability.NewTracerProvider(ctx, observability.Config{
		Endpoint: cfg.Observability.OTLPEndpoint,
		Insecure: cfg.Observability.Insecure,
		Env:      cfg.Observability.Env,
		Release:  cfg.Observability.Release,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracer provider: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	metadataClient, err := metadata.NewClient(ctx, metadata.Config{
		Host:            cfg.MetadataDB.Host,
		Port:            cfg.MetadataDB.Port,
		User:            cfg.MetadataDB.User,
		Password:        cfg.MetadataDB.Password,
		Database:        cfg.MetadataDB.Database,
		SSLMode:         cfg.MetadataDB.SSLMode,
		MaxOpenConns:    cfg.MetadataDB.MaxOpenConns,
		MaxIdleConns:    cfg.MetadataDB.MaxIdleConns,
		ConnMaxLifetime: cfg.MetadataDB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MetadataDB.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to metadata registry: %v", err)
	}
	defer func() {
		if err := metadataClient.Close(); err != nil {
			log.Printf("Error closing metadata client: %v", err)
		}
	}()
	log.Println("Connected to metadata registry")

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.GraphStore.URI,
		neo4j.BasicAuth(cfg.GraphStore.Username, cfg.GraphStore.Password, ""))
	if err != nil {
		log.Fatalf("Failed to create graph store driver: %v", err)
	}
	defer func() {
		if err := neo4jDriver.Close(ctx); err != nil {
			log.Printf("Error closing graph driver: %v", err)
		}
	}()
	graphAdapter := graphstore.New(neo4jDriver, cfg.Timeouts.Graph)
	log.Println("Connected to graph store")

	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.VectorStore.Host,
		Port:   cfg.VectorStore.Port,
		APIKey: cfg.VectorStore.APIKey,
		UseTLS: cfg.VectorStore.UseTLS,
	})
	if err != nil {
		log.Fatalf("Failed to create vector store client: %v", err)
	}

	llmClient, err := llm.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.Timeouts.LLM, cfg.LLM.EmbedDim)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	vectorAdapter := vectorstore.New(qdrantClient, llmClient, cfg.LLM.EmbedDim, cfg.QueryLimits.VectorKMax)
	log.Println("Connected to vector store")

	var promptSource promptregistry.Source
	if cfg.PromptRegistry.LangfuseHost != "" {
		promptSource = promptregistry.NewHTTPSource(cfg.PromptRegistry.LangfuseHost, cfg.PromptRegistry.LangfusePublicKey, cfg.PromptRegistry.LangfuseSecretKey)
	} else {
		promptSource = promptregistry.NewEmbeddedSource()
	}
	promptRegistry := promptregistry.New(promptSource, cfg.PromptRegistry.CacheTTL)

	plannerComponent := planner.New(promptRegistry, llmClient, cfg.LLM.PlanningModel)
	collectorComponent := collector.New(vectorAdapter, cfg.QueryLimits.VectorKDefault)
	cyphergenComponent := cyphergen.New(promptRegistry, llmClient, cfg.LLM.CypherModel)
	synthesizerComponent := synthesizer.New(promptRegistry, llmClient, cfg.LLM.SynthesisModel)
	cache := querycache.New(cfg.Cache.TTL)

	isProduction := cfg.Observability.Env == "production"
	orchestratorComponent := orchestrator.New(
		metadataClient, cache, plannerComponent, collectorComponent,
		cyphergenComponent, graphAdapter, synthesizerComponent,
		cfg.Timeouts.Overall, !isProduction, cfg.QueryLimits.MaxQueryLength,
	)

	server := api.NewServer(metadataClient, orchestratorComponent)
	if err := server.ValidateWiring(); err != nil {
		log.Fatalf("Server wiring incomplete: %v", err)
	}

	addr := ":" + cfg.Server.HTTPPort
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to bind %s: %v", addr, err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		serverErrCh <- server.StartWithListener(listener)
	}()

	select {
	case err := <-serverErrCh:
		if err != nil {
			log.Fatalf("Server stopped unexpectedly: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
}
