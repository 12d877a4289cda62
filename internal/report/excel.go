package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelWriter renders one workbook per analyzed batch: a summary block
// followed by a row per invoice.
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates a new report writer rooted at outputDir
func NewExcelWriter(outputDir string, logger *zap.Logger) (*ExcelWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ExcelWriter{outputDir: outputDir, logger: logger}, nil
}

var invoiceHeaders = []string{
	"Invoice ID", "Employee", "Vendor", "Date", "Amount", "Category",
	"Status", "Reimbursable", "Alcohol", "Violations", "Reasoning",
}

// WriteBatchReport writes the batch workbook and returns its path
func (w *ExcelWriter) WriteBatchReport(employeeName string, analyses []models.InvoiceAnalysis, summary models.BatchSummary) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	// Summary block
	w.setCell(f, sheet, "A1", "Invoice Reimbursement Batch Report")
	w.setCell(f, sheet, "A2", "Employee")
	w.setCell(f, sheet, "B2", employeeName)
	w.setCell(f, sheet, "A3", "Generated")
	w.setCell(f, sheet, "B3", time.Now().Format("2006-01-02 15:04:05"))
	w.setCell(f, sheet, "A4", "Total Invoices")
	w.setCell(f, sheet, "B4", summary.TotalInvoices)
	w.setCell(f, sheet, "A5", "Approved")
	w.setCell(f, sheet, "B5", summary.Approved)
	w.setCell(f, sheet, "A6", "Declined")
	w.setCell(f, sheet, "B6", summary.Declined)
	w.setCell(f, sheet, "A7", "Partial Approved")
	w.setCell(f, sheet, "B7", summary.PartialApproved)
	w.setCell(f, sheet, "A8", "Total Amount")
	w.setCell(f, sheet, "B8", summary.TotalAmount)
	w.setCell(f, sheet, "A9", "Total Reimbursable")
	w.setCell(f, sheet, "B9", summary.TotalReimbursable)
	w.setCell(f, sheet, "A10", "Compliance Rate (%)")
	w.setCell(f, sheet, "B10", summary.ComplianceRate)

	// Per-invoice table
	headerRow := 12
	for col, header := range invoiceHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		w.setCell(f, sheet, cell, header)
	}
	for i, analysis := range analyses {
		row := headerRow + 1 + i
		values := []interface{}{
			analysis.InvoiceID,
			analysis.EmployeeName,
			analysis.VendorName,
			analysis.Date,
			analysis.Amount,
			string(analysis.Category),
			string(analysis.Status),
			analysis.ReimbursableAmount,
			analysis.ContainsAlcohol,
			strings.Join(analysis.PolicyViolations, "; "),
			analysis.Reasoning,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			w.setCell(f, sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("batch_%s_%s.xlsx",
		sanitizeFilename(employeeName), time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(w.outputDir, filename)

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.Info("Batch report saved", zap.String("path", outputPath))
	return outputPath, nil
}

func (w *ExcelWriter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell), zap.Error(err))
	}
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return replacer.Replace(strings.TrimSpace(name))
}
