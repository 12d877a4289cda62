package server

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"go.uber.org/zap"
)

// BatchAnalyzer runs the invoice analysis pipeline for one request
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, policyText string, archive []byte, employeeName string) *models.AnalysisResponse
}

// ChatService answers one retrieval-backed chat query
type ChatService interface {
	ProcessQuery(ctx context.Context, request models.ChatRequest) models.ChatResponse
}

// AnalysisHistory lists persisted analyses for one employee
type AnalysisHistory interface {
	ListByEmployee(ctx context.Context, employeeName string, limit int) ([]models.InvoiceAnalysis, error)
}

// DocumentCounter reports how many documents the retrieval store holds
type DocumentCounter interface {
	Len() int
}

// Pinger verifies the database connection
type Pinger interface {
	Ping() error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	analyzer    BatchAnalyzer
	chatService ChatService
	history     AnalysisHistory
	documents   DocumentCounter
	db          Pinger
	oracleReady bool
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	analyzer BatchAnalyzer,
	chatService ChatService,
	history AnalysisHistory,
	documents DocumentCounter,
	db Pinger,
	oracleReady bool,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		analyzer:    analyzer,
		chatService: chatService,
		history:     history,
		documents:   documents,
		db:          db,
		oracleReady: oracleReady,
		logger:      logger,
	}
}

// ErrorResponse is the envelope for request-level failures
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice Reimbursement System",
		"status":  "running",
		"version": "1.0.0",
	})
}

// Health handles GET /health with a per-dependency status map
func (h *Handlers) Health(c *gin.Context) {
	services := gin.H{
		"pdf_processor": "operational",
		"llm_service":   statusOf(h.oracleReady),
		"vector_store":  "operational",
		"database":      "operational",
	}
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			services["database"] = "unavailable"
			status = "degraded"
		}
	}
	if !h.oracleReady {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           status,
		"services":         services,
		"stored_documents": h.documents.Len(),
		"time":             time.Now().UTC().Format(time.RFC3339),
	})
}

// AnalyzeInvoices handles POST /analyze-invoices. Expects multipart form
// fields policy_file (PDF), invoices_zip (zip of PDFs) and employee_name.
func (h *Handlers) AnalyzeInvoices(c *gin.Context) {
	employeeName := strings.TrimSpace(c.PostForm("employee_name"))
	if employeeName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "employee_name is required"})
		return
	}

	policyHeader, err := c.FormFile("policy_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "policy_file is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(policyHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "policy file must be a PDF"})
		return
	}

	zipHeader, err := c.FormFile("invoices_zip")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invoices_zip is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(zipHeader.Filename), ".zip") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invoices must be a ZIP file"})
		return
	}

	policyBytes, err := readUpload(policyHeader)
	if err != nil {
		h.logger.Error("Failed to read policy upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "failed to read policy file"})
		return
	}

	archiveBytes, err := readUpload(zipHeader)
	if err != nil {
		h.logger.Error("Failed to read archive upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "failed to read invoices zip"})
		return
	}

	h.logger.Info("Analysis request received",
		zap.String("employee", employeeName),
		zap.String("archive", zipHeader.Filename))

	// Policy bytes are decoded best-effort; invalid sequences are dropped
	// rather than rejecting the request.
	policyText := strings.ToValidUTF8(string(policyBytes), "")

	response := h.analyzer.AnalyzeBatch(c.Request.Context(), policyText, archiveBytes, employeeName)
	c.JSON(http.StatusOK, response)
}

// ListInvoices handles GET /invoices. Returns the persisted analysis
// history for one employee, newest first.
func (h *Handlers) ListInvoices(c *gin.Context) {
	employeeName := strings.TrimSpace(c.Query("employee_name"))
	if employeeName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "employee_name is required"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	analyses, err := h.history.ListByEmployee(c.Request.Context(), employeeName, limit)
	if err != nil {
		h.logger.Error("Failed to load invoice history",
			zap.String("employee", employeeName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "failed to load invoice history"})
		return
	}
	if analyses == nil {
		analyses = []models.InvoiceAnalysis{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"employee_name": employeeName,
		"invoices":      analyses,
	})
}

// Chat handles POST /chat
func (h *Handlers) Chat(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "query is required"})
		return
	}

	response := h.chatService.ProcessQuery(c.Request.Context(), request)
	c.JSON(http.StatusOK, response)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func statusOf(ok bool) string {
	if ok {
		return "operational"
	}
	return "unavailable"
}
