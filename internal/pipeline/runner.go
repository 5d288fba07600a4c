package pipeline

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"invodex/internal/classifier"
	"invodex/internal/discovery"
	"invodex/internal/domain"
	"invodex/internal/llm"
	"invodex/internal/mapper"
	"invodex/internal/port"
)

// Runner is the resumable batch driver. One invocation discovers the
// candidate file list, processes the window selected by the caller's cursor
// strictly sequentially, and moves successfully processed local files into
// the processed area so overlapping or repeated windows never touch them
// again. The Runner itself keeps no state across invocations.
type Runner struct {
	analyzer  port.DocumentAnalyzer
	extractor port.FieldExtractor
	discover  port.FileDiscovery
	reader    port.ByteReader
	lifecycle port.FileLifecycle
	locale    string
}

// NewRunner wires the batch driver. extractor may be nil when hybrid mode is
// not used.
func NewRunner(
	analyzer port.DocumentAnalyzer,
	extractor port.FieldExtractor,
	discover port.FileDiscovery,
	reader port.ByteReader,
	lifecycle port.FileLifecycle,
	locale string,
) *Runner {
	return &Runner{
		analyzer:  analyzer,
		extractor: extractor,
		discover:  discover,
		reader:    reader,
		lifecycle: lifecycle,
		locale:    locale,
	}
}

// RunResult aggregates one batch invocation's output.
type RunResult struct {
	Results      []domain.Document `json:"results"`
	TotalFiles   int               `json:"total_files"`
	FilesHandled int               `json:"files_handled"`
}

// Run processes one window of the discovered file set through the invoice
// analyzer and the canonical mapper. A windowSize of zero or less processes
// from startingPoint through the end of the list. Per-file failures yield
// the degraded sentinel and processing continues; only caller-argument
// errors (bad path) are returned.
func (r *Runner) Run(ctx context.Context, dirPath string, recursive, languageDetection bool, startingPoint, windowSize int) (*RunResult, error) {
	return r.run(ctx, dirPath, recursive, startingPoint, windowSize, func(ctx context.Context, uri string) domain.Document {
		return r.processFile(ctx, uri, languageDetection)
	})
}

// RunHybrid processes one window through full-text recognition plus the LLM
// field extractor, merging the analyzer's geometry and per-field confidence
// into the LLM's field values.
func (r *Runner) RunHybrid(ctx context.Context, dirPath string, recursive, languageDetection bool, startingPoint, windowSize int) (*RunResult, error) {
	if r.extractor == nil {
		return nil, fmt.Errorf("hybrid mode requires a field extractor")
	}
	return r.run(ctx, dirPath, recursive, startingPoint, windowSize, r.processFileHybrid)
}

func (r *Runner) run(ctx context.Context, dirPath string, recursive bool, startingPoint, windowSize int, perFile func(context.Context, string) domain.Document) (*RunResult, error) {
	if strings.TrimSpace(dirPath) == "" {
		return nil, domain.ErrInvalidPath
	}

	uris, err := r.discover.Discover(ctx, dirPath, recursive)
	if err != nil {
		return nil, fmt.Errorf("discovering files under %s: %w", dirPath, err)
	}

	cursor := domain.BatchCursor{TotalFiles: len(uris), StartingPoint: startingPoint, WindowSize: windowSize}
	lo, hi := cursor.Window()
	log.Printf("pipeline.Runner: %d candidate files, processing window [%d, %d)", len(uris), lo, hi)

	out := &RunResult{TotalFiles: len(uris)}
	for _, uri := range uris[lo:hi] {
		doc := perFile(ctx, uri)
		out.Results = append(out.Results, doc)
		out.FilesHandled++
	}
	return out, nil
}

// processFile runs the standard per-file flow: read bytes, invoice analysis,
// canonical mapping, document-type decision, arithmetic cross-check,
// lifecycle move.
func (r *Runner) processFile(ctx context.Context, uri string, languageDetection bool) domain.Document {
	content, err := r.reader.ReadBytes(ctx, uri)
	if err != nil {
		log.Printf("pipeline.Runner: reading %s failed: %v", uri, err)
		return domain.NewDegradedDocument(baseName(uri), uri, "en")
	}

	result, err := r.analyzer.Analyze(ctx, port.AnalyzeInput{
		Content:     content.Data,
		ContentType: content.ContentType,
		Analyzer:    port.AnalyzerInvoice,
		Locale:      r.locale,
	})
	if err != nil {
		log.Printf("pipeline.Runner: analysis of %s failed: %v", content.FileName, err)
		return domain.NewDegradedDocument(content.FileName, content.SourceURI, "en")
	}

	lang := "en"
	if languageDetection && result.Content != "" {
		lang = classifier.DetectLanguage(result.Content)
	}

	doc := mapper.MapInvoice(result, content.FileName, content.SourceURI, lang)
	fileURL := discovery.ViewURL(content.SourceURI)
	doc.FileURL = &fileURL

	// The analyzer found an invoice if any of the identifying fields came
	// back; otherwise the file is something else.
	if doc.InvoiceNumber == nil && doc.Total == nil && doc.SupplierName == nil {
		doc.DocumentType = domain.DocumentTypeOther
	}

	// Advisory cross-check against the keyword classifier; logged only.
	if result.Content != "" {
		if label, score := classifier.Classify(result.Content); label != doc.DocumentType {
			log.Printf("pipeline.Runner: %s: heuristic classifier says %s (%.2f), analyzer mapping says %s",
				content.FileName, label, score, doc.DocumentType)
		}
	}

	ReconcileTotals(&doc)
	r.finishFile(ctx, &doc, content.SourceURI)
	return doc
}

// processFileHybrid runs full-text recognition plus LLM extraction and
// merges in the invoice analyzer's geometry.
func (r *Runner) processFileHybrid(ctx context.Context, uri string) domain.Document {
	content, err := r.reader.ReadBytes(ctx, uri)
	if err != nil {
		log.Printf("pipeline.Runner: reading %s failed: %v", uri, err)
		return domain.NewDegradedDocument(baseName(uri), uri, "unknown")
	}

	invoiceResult, err := r.analyzer.Analyze(ctx, port.AnalyzeInput{
		Content:     content.Data,
		ContentType: content.ContentType,
		Analyzer:    port.AnalyzerInvoice,
		Locale:      r.locale,
	})
	if err != nil {
		log.Printf("pipeline.Runner: invoice analysis of %s failed: %v", content.FileName, err)
		return domain.NewDegradedDocument(content.FileName, content.SourceURI, "unknown")
	}

	readResult, err := r.analyzer.Analyze(ctx, port.AnalyzeInput{
		Content:     content.Data,
		ContentType: content.ContentType,
		Analyzer:    port.AnalyzerRead,
	})
	if err != nil {
		log.Printf("pipeline.Runner: text recognition of %s failed: %v", content.FileName, err)
		return domain.NewDegradedDocument(content.FileName, content.SourceURI, "unknown")
	}
	if readResult.Content == "" {
		log.Printf("pipeline.Runner: no text recognized in %s", content.FileName)
		return domain.NewDegradedDocument(content.FileName, content.SourceURI, "unknown")
	}

	fields := r.extractor.Extract(ctx, readResult.Content, content.FileName)
	doc := llm.FieldsToDocument(fields, content.FileName, content.SourceURI)
	fileURL := discovery.ViewURL(content.SourceURI)
	doc.FileURL = &fileURL

	// Merge: the LLM supplies field values, the invoice analyzer supplies
	// geometry and per-field confidence for the canonical names it located.
	mapped := mapper.MapInvoice(invoiceResult, content.FileName, content.SourceURI, doc.Language)
	doc.BoundingBoxes = mapped.BoundingBoxes
	doc.FieldConfidence = mapped.FieldConfidence
	doc.PageCount = mapped.PageCount

	ReconcileTotals(&doc)
	r.finishFile(ctx, &doc, content.SourceURI)
	return doc
}

// finishFile moves the source file out of the discovery set and re-points
// the document at the destination, so SourceURI and FileURL reference where
// the file now lives rather than where it was found. A failed move is logged
// but does not degrade the already-extracted document; the worst case is
// that a later window reprocesses the file.
func (r *Runner) finishFile(ctx context.Context, doc *domain.Document, uri string) {
	dest, moved, err := r.lifecycle.MarkProcessed(ctx, uri)
	if err != nil {
		log.Printf("pipeline.Runner: marking %s processed failed: %v", uri, err)
		return
	}
	if !moved {
		return
	}
	log.Printf("pipeline.Runner: moved %s to %s", uri, dest)
	doc.SourceURI = dest
	destURL := discovery.ViewURL(dest)
	doc.FileURL = &destURL
}

func baseName(uri string) string {
	trimmed := strings.TrimPrefix(uri, "file://")
	trimmed = strings.TrimPrefix(trimmed, "s3://")
	return path.Base(trimmed)
}
