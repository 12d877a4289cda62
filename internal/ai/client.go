package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iaisolution/invoice-reimbursement/internal/config"
	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"go.uber.org/zap"
)

// jsonSpanPattern finds the first brace-delimited span in a model reply,
// tolerating commentary the model wraps around the payload.
var jsonSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Client classifies invoice text against the reimbursement policy through
// a text-generation capability. Analyze and GenerateChatReply are total:
// every oracle or parse failure degrades to a deterministic fallback
// instead of an error.
type Client struct {
	generator Generator
	policy    config.PolicyConfig
	logger    *zap.Logger
}

// NewClient creates a new analysis client
func NewClient(generator Generator, policy config.PolicyConfig, logger *zap.Logger) *Client {
	return &Client{
		generator: generator,
		policy:    policy,
		logger:    logger,
	}
}

// Analyze classifies one invoice document. It makes exactly one oracle
// call; on any failure it returns the fallback record rather than an error.
func (c *Client) Analyze(ctx context.Context, invoiceText, filename, employeeName string) models.InvoiceAnalysis {
	prompt := buildAnalysisPrompt(c.policy, invoiceText, filename, employeeName)

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.logger.Error("Invoice analysis call failed",
			zap.String("filename", filename), zap.Error(err))
		return FallbackAnalysis(filename, employeeName, err.Error())
	}

	parsed, err := parseStructuredResponse(raw)
	if err != nil {
		c.logger.Error("Failed to parse analysis response",
			zap.String("filename", filename), zap.Error(err))
		return FallbackAnalysis(filename, employeeName, fmt.Sprintf("JSON parsing error: %v", err))
	}

	result := Normalize(parsed, filename, employeeName)
	c.logger.Info("Successfully analyzed invoice",
		zap.String("filename", filename),
		zap.String("status", string(result.Status)))
	return result
}

// GenerateChatReply answers a user query grounded in retrieved documents.
// On failure it returns an apologetic message rather than an error.
func (c *Client) GenerateChatReply(ctx context.Context, query string, contextDocs []string) string {
	prompt := buildChatPrompt(c.policy, query, contextDocs)

	reply, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.logger.Error("Chat reply generation failed", zap.Error(err))
		return fmt.Sprintf("I apologize, but I encountered an error: %v", err)
	}
	return strings.TrimSpace(reply)
}

// parseStructuredResponse turns a raw model reply into an untyped mapping.
// It strips markdown code fences and recovers the first JSON object span
// before unmarshaling.
func parseStructuredResponse(raw string) (map[string]interface{}, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	if span := jsonSpanPattern.FindString(text); span != "" {
		text = span
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return parsed, nil
}

// FallbackAnalysis builds the deterministic record used when the oracle
// call or its output parsing fails. All required fields are present so
// callers never see a structurally incomplete result.
func FallbackAnalysis(filename, employeeName, cause string) models.InvoiceAnalysis {
	return models.InvoiceAnalysis{
		InvoiceID:           filename,
		EmployeeName:        employeeName,
		VendorName:          "Unknown Vendor",
		Amount:              0,
		Category:            models.CategoryFood,
		Items:               []models.InvoiceLineItem{},
		Status:              models.StatusPendingReview,
		ReimbursableAmount:  0,
		PolicyViolations:    []string{fmt.Sprintf("Processing error: %s", cause)},
		Reasoning:           fmt.Sprintf("Could not analyze due to error: %s. Manual review required.", cause),
		ContainsAlcohol:     false,
		SubmissionDateValid: true,
	}
}
