package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"invodex/internal/analysis/azure"
	"invodex/internal/config"
	"invodex/internal/discovery"
	"invodex/internal/handler"
	"invodex/internal/llm/openai"
	"invodex/internal/pipeline"
	"invodex/internal/port"
	"invodex/internal/repository/postgres"
	"invodex/internal/router"
	s3storage "invodex/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Persistence is optional: without a reachable database the server
	// still extracts, it just returns results without storing them.
	var db *sqlx.DB
	var repo port.DocumentRepository
	if db, err = postgres.NewDB(&cfg.DB); err != nil {
		log.Printf("database unavailable, persistence disabled: %v", err)
		db = nil
	} else {
		defer db.Close()
		repo = postgres.NewDocumentRepo(db)
	}

	// Object storage is optional: without a bucket only local paths work.
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" || cfg.S3.Endpoint != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	analyzer := azure.NewClient(&cfg.Azure)
	var extractor port.FieldExtractor
	if cfg.LLM.APIKey != "" {
		extractor = openai.NewExtractor(&cfg.LLM)
	}

	discover := discovery.NewDiscovery(storage, cfg.Batch.ProcessedDir)
	reader := discovery.NewReader(storage)
	lifecycle := discovery.NewLifecycle(cfg.Batch.ProcessedDir)
	runner := pipeline.NewRunner(analyzer, extractor, discover, reader, lifecycle, cfg.Azure.Locale)

	processH := handler.NewProcessHandler(runner, repo)
	fileH := handler.NewFileHandler(storage, &cfg.S3)
	var documentH *handler.DocumentHandler
	if repo != nil {
		documentH = handler.NewDocumentHandler(repo)
	}
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg.CORS.AllowedOrigins, processH, fileH, documentH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
