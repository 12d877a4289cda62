package invoice

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iaisolution/invoice-reimbursement/internal/ai"
	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"go.uber.org/zap"
)

// TextExtractor extracts text from every eligible document in an archive
type TextExtractor interface {
	ExtractAll(archive []byte) (map[string]string, error)
}

// AnalysisClient classifies one invoice document; it never fails
type AnalysisClient interface {
	Analyze(ctx context.Context, invoiceText, filename, employeeName string) models.InvoiceAnalysis
}

// AnalysisStore indexes analyzed invoices for later retrieval
type AnalysisStore interface {
	StoreAnalysis(analysis models.InvoiceAnalysis, sourceText string)
}

// AnalysisArchiver persists analyzed invoices durably
type AnalysisArchiver interface {
	Save(ctx context.Context, analysis models.InvoiceAnalysis, sourceText string) error
}

// ReportWriter renders a batch report file and returns its path
type ReportWriter interface {
	WriteBatchReport(employeeName string, analyses []models.InvoiceAnalysis, summary models.BatchSummary) (string, error)
}

// BatchAnalyzer orchestrates the invoice analysis pipeline: extract every
// document from the archive, classify each one, index and persist the
// results, and aggregate a batch summary. Archiver and reporter are
// optional; when present their failures are logged and swallowed so they
// never affect the batch outcome.
type BatchAnalyzer struct {
	extractor TextExtractor
	client    AnalysisClient
	store     AnalysisStore
	archiver  AnalysisArchiver
	reporter  ReportWriter
	logger    *zap.Logger
}

// NewBatchAnalyzer creates a new batch analyzer
func NewBatchAnalyzer(
	extractor TextExtractor,
	client AnalysisClient,
	store AnalysisStore,
	archiver AnalysisArchiver,
	reporter ReportWriter,
	logger *zap.Logger,
) *BatchAnalyzer {
	return &BatchAnalyzer{
		extractor: extractor,
		client:    client,
		store:     store,
		archiver:  archiver,
		reporter:  reporter,
		logger:    logger,
	}
}

// AnalyzeBatch analyzes every invoice in the archive. Only an archive-level
// extraction failure fails the call; any per-document failure yields a
// pending_review record for that document and the batch continues.
func (b *BatchAnalyzer) AnalyzeBatch(ctx context.Context, policyText string, archive []byte, employeeName string) *models.AnalysisResponse {
	start := time.Now()
	b.logger.Info("Starting batch analysis",
		zap.String("employee", employeeName),
		zap.Int("archive_bytes", len(archive)),
		zap.Int("policy_chars", len(policyText)))

	texts, err := b.extractor.ExtractAll(archive)
	if err != nil {
		b.logger.Error("Batch extraction failed", zap.Error(err))
		return &models.AnalysisResponse{
			AnalysisResults: []models.InvoiceAnalysis{},
			Summary:         Summarize(nil),
			Success:         false,
			Message:         fmt.Sprintf("Analysis failed: %v", err),
		}
	}

	filenames := make([]string, 0, len(texts))
	for filename := range texts {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	results := make([]models.InvoiceAnalysis, 0, len(filenames))
	for _, filename := range filenames {
		analysis := b.analyzeOne(ctx, texts[filename], filename, employeeName)
		results = append(results, analysis)
	}

	summary := Summarize(results)
	elapsed := round2(time.Since(start).Seconds())

	if b.reporter != nil {
		if path, err := b.reporter.WriteBatchReport(employeeName, results, summary); err != nil {
			b.logger.Error("Failed to write batch report", zap.Error(err))
		} else {
			b.logger.Info("Batch report written", zap.String("path", path))
		}
	}

	b.logger.Info("Batch analysis completed",
		zap.Int("invoices", len(results)),
		zap.Float64("elapsed_seconds", elapsed))

	return &models.AnalysisResponse{
		AnalysisResults: results,
		Summary:         summary,
		ProcessingTime:  elapsed,
		Success:         true,
		Message:         fmt.Sprintf("Successfully analyzed %d invoices", len(results)),
	}
}

// analyzeOne runs the per-document chain behind a panic fence so one bad
// invoice never takes down the batch.
func (b *BatchAnalyzer) analyzeOne(ctx context.Context, text, filename, employeeName string) (analysis models.InvoiceAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Document analysis panicked",
				zap.String("filename", filename), zap.Any("cause", r))
			analysis = ai.FallbackAnalysis(filename, employeeName, fmt.Sprintf("%v", r))
		}
	}()

	analysis = b.client.Analyze(ctx, text, filename, employeeName)

	b.store.StoreAnalysis(analysis, text)

	if b.archiver != nil {
		if err := b.archiver.Save(ctx, analysis, text); err != nil {
			b.logger.Error("Failed to persist analysis",
				zap.String("invoice_id", analysis.InvoiceID), zap.Error(err))
		}
	}
	return analysis
}
