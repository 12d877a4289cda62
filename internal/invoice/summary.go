package invoice

import (
	"math"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
)

// Summarize computes batch statistics from a sequence of analysis records.
// Pure function of its input; returns zeros for an empty batch.
func Summarize(analyses []models.InvoiceAnalysis) models.BatchSummary {
	summary := models.BatchSummary{TotalInvoices: len(analyses)}
	if len(analyses) == 0 {
		return summary
	}

	for _, analysis := range analyses {
		switch analysis.Status {
		case models.StatusApproved:
			summary.Approved++
		case models.StatusDeclined:
			summary.Declined++
		case models.StatusPartialApproved:
			summary.PartialApproved++
		}
		summary.TotalAmount += analysis.Amount
		summary.TotalReimbursable += analysis.ReimbursableAmount
	}

	summary.TotalAmount = round2(summary.TotalAmount)
	summary.TotalReimbursable = round2(summary.TotalReimbursable)
	summary.ComplianceRate = round1(float64(summary.Approved) / float64(summary.TotalInvoices) * 100)
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
