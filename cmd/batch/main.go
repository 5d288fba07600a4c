// Command batch runs the extraction pipeline over a directory or S3 prefix
// from the command line, window by window, without the HTTP server.
// Usage: go run ./cmd/batch -path ./inbox -recursive -window 10
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"invodex/internal/analysis/azure"
	"invodex/internal/config"
	"invodex/internal/discovery"
	"invodex/internal/export"
	"invodex/internal/llm/openai"
	"invodex/internal/pipeline"
	"invodex/internal/port"
	"invodex/internal/repository/postgres"
	s3storage "invodex/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		path       = flag.String("path", "", "directory, file, or s3:// prefix to process")
		recursive  = flag.Bool("recursive", false, "descend into subdirectories")
		detectLang = flag.Bool("detect-language", true, "detect document language from recognized text")
		useLLM     = flag.Bool("llm", false, "use the hybrid LLM extraction flow")
		start      = flag.Int("start", 0, "starting point into the discovered file list")
		window     = flag.Int("window", 0, "window size; 0 processes through the end")
		persist    = flag.Bool("persist", false, "store results in PostgreSQL")
		xlsxOut    = flag.String("xlsx", "", "write results to an XLSX workbook at this path")
		jsonOut    = flag.Bool("json", false, "print results as JSON to stdout")
	)
	flag.Parse()

	if *path == "" {
		flag.Usage()
		return fmt.Errorf("-path is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" || cfg.S3.Endpoint != "" {
		if storage, err = s3storage.NewS3Client(&cfg.S3); err != nil {
			return fmt.Errorf("initializing S3 client: %w", err)
		}
	}

	analyzer := azure.NewClient(&cfg.Azure)
	var extractor port.FieldExtractor
	if *useLLM {
		extractor = openai.NewExtractor(&cfg.LLM)
	}

	runner := pipeline.NewRunner(
		analyzer,
		extractor,
		discovery.NewDiscovery(storage, cfg.Batch.ProcessedDir),
		discovery.NewReader(storage),
		discovery.NewLifecycle(cfg.Batch.ProcessedDir),
		cfg.Azure.Locale,
	)

	windowSize := *window
	if windowSize == 0 {
		windowSize = cfg.Batch.WindowSize
	}

	ctx := context.Background()
	var result *pipeline.RunResult
	if *useLLM {
		result, err = runner.RunHybrid(ctx, *path, *recursive, *detectLang, *start, windowSize)
	} else {
		result, err = runner.Run(ctx, *path, *recursive, *detectLang, *start, windowSize)
	}
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	log.Printf("processed %d of %d files (window start %d)",
		result.FilesHandled, result.TotalFiles, *start)

	if *persist {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer func() { _ = db.Close() }()
		if err := postgres.NewDocumentRepo(db).UpsertBatch(ctx, result.Results); err != nil {
			return fmt.Errorf("storing results: %w", err)
		}
		log.Printf("stored %d documents", len(result.Results))
	}

	if *xlsxOut != "" {
		name := export.SuggestFileName(*xlsxOut)
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		defer func() { _ = f.Close() }()
		if err := export.WriteXLSX(f, result.Results); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s", name)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	}

	return nil
}
