package retrieval

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"go.uber.org/zap"
)

// searchWindow bounds how far back Search looks. Older documents are
// unreachable; recency bias is the intended behavior for chat context.
const searchWindow = 20

// Document is a denormalized, search-optimized projection of one analyzed
// invoice plus its extracted source text. Created at store time, never
// mutated afterward.
type Document struct {
	ID           string
	InvoiceID    string
	EmployeeName string
	Status       string
	Formatted    string
	SourceText   string
	StoredAt     time.Time
}

// Store is an append-only in-memory record store with naive lexical
// search over previously analyzed invoices. It holds no external state;
// construct one per process and inject it where needed.
type Store struct {
	mu     sync.RWMutex
	docs   []Document
	logger *zap.Logger
}

// NewStore creates an empty retrieval store
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// StoreAnalysis appends a document for one analyzed invoice. It never
// fails observably; storage problems must not block the caller's batch.
func (s *Store) StoreAnalysis(analysis models.InvoiceAnalysis, sourceText string) {
	doc := Document{
		ID:           uuid.NewString(),
		InvoiceID:    analysis.InvoiceID,
		EmployeeName: analysis.EmployeeName,
		Status:       string(analysis.Status),
		Formatted:    formatDocument(analysis),
		SourceText:   sourceText,
		StoredAt:     time.Now(),
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	total := len(s.docs)
	s.mu.Unlock()

	s.logger.Info("Stored invoice analysis",
		zap.String("invoice_id", analysis.InvoiceID),
		zap.Int("total_documents", total))
}

// Search returns formatted snippets for documents matching the query.
// Matching is case-insensitive token containment over the document's
// searchable text, scanning the most recent documents first and stopping
// once maxResults matches are collected.
func (s *Store) Search(query string, maxResults int) []string {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 || maxResults <= 0 {
		return []string{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	oldest := len(s.docs) - searchWindow
	if oldest < 0 {
		oldest = 0
	}

	results := []string{}
	for i := len(s.docs) - 1; i >= oldest && len(results) < maxResults; i-- {
		doc := s.docs[i]
		searchable := strings.ToLower(doc.Formatted + " " + doc.SourceText)
		for _, token := range tokens {
			if strings.Contains(searchable, token) {
				results = append(results, doc.Formatted)
				break
			}
		}
	}

	s.logger.Debug("Retrieval search completed",
		zap.String("query", query), zap.Int("matches", len(results)))
	return results
}

// Len reports how many documents have been stored
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// formatDocument renders the snippet handed to the chat prompt
func formatDocument(analysis models.InvoiceAnalysis) string {
	descriptions := make([]string, 0, len(analysis.Items))
	for _, item := range analysis.Items {
		descriptions = append(descriptions, item.Description)
	}

	return fmt.Sprintf(`Invoice: %s
Employee: %s
Vendor: %s
Amount: %.2f
Category: %s
Status: %s
Reimbursable: %.2f
Alcohol: %t
Items: %s
Reasoning: %s`,
		analysis.InvoiceID,
		analysis.EmployeeName,
		analysis.VendorName,
		analysis.Amount,
		analysis.Category,
		analysis.Status,
		analysis.ReimbursableAmount,
		analysis.ContainsAlcohol,
		strings.Join(descriptions, ", "),
		analysis.Reasoning)
}
