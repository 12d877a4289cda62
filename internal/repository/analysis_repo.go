package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"github.com/iaisolution/invoice-reimbursement/pkg/database"
	"go.uber.org/zap"
)

// AnalysisRepository persists analyzed invoices to sqlite. The in-memory
// retrieval store remains the chat-context source; this table is the
// durable batch history.
type AnalysisRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *database.DB, logger *zap.Logger) *AnalysisRepository {
	return &AnalysisRepository{db: db, logger: logger}
}

// Save writes one analysis record and its line items in a transaction
func (r *AnalysisRepository) Save(ctx context.Context, analysis models.InvoiceAnalysis, sourceText string) error {
	violations, err := json.Marshal(analysis.PolicyViolations)
	if err != nil {
		return fmt.Errorf("failed to marshal policy violations: %w", err)
	}

	return r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_analyses (
				invoice_id, employee_name, vendor_name, invoice_date,
				amount, category, status, reimbursable_amount,
				policy_violations, reasoning, contains_alcohol,
				submission_date_valid, source_text
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			analysis.InvoiceID,
			analysis.EmployeeName,
			analysis.VendorName,
			analysis.Date,
			analysis.Amount,
			string(analysis.Category),
			string(analysis.Status),
			analysis.ReimbursableAmount,
			string(violations),
			analysis.Reasoning,
			analysis.ContainsAlcohol,
			analysis.SubmissionDateValid,
			sourceText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert analysis: %w", err)
		}

		analysisID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get analysis id: %w", err)
		}

		for _, item := range analysis.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_line_items (analysis_id, description, quantity, unit_price, amount)
				VALUES (?, ?, ?, ?, ?)`,
				analysisID, item.Description, item.Quantity, item.UnitPrice, item.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert line item: %w", err)
			}
		}
		return nil
	})
}

// ListByEmployee returns persisted analyses for one employee, newest first
func (r *AnalysisRepository) ListByEmployee(ctx context.Context, employeeName string, limit int) ([]models.InvoiceAnalysis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT invoice_id, employee_name, vendor_name, invoice_date,
		       amount, category, status, reimbursable_amount,
		       policy_violations, reasoning, contains_alcohol, submission_date_valid
		FROM invoice_analyses
		WHERE employee_name = ?
		ORDER BY id DESC
		LIMIT ?`,
		employeeName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.InvoiceAnalysis
	for rows.Next() {
		var analysis models.InvoiceAnalysis
		var violations string
		err := rows.Scan(
			&analysis.InvoiceID,
			&analysis.EmployeeName,
			&analysis.VendorName,
			&analysis.Date,
			&analysis.Amount,
			&analysis.Category,
			&analysis.Status,
			&analysis.ReimbursableAmount,
			&violations,
			&analysis.Reasoning,
			&analysis.ContainsAlcohol,
			&analysis.SubmissionDateValid,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(violations), &analysis.PolicyViolations); err != nil {
			r.logger.Warn("Malformed policy violations column",
				zap.String("invoice_id", analysis.InvoiceID), zap.Error(err))
			analysis.PolicyViolations = []string{}
		}
		analysis.Items = []models.InvoiceLineItem{}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

// CountByStatus returns how many persisted analyses carry each status
func (r *AnalysisRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM invoice_analyses GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
