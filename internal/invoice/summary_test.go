package invoice

import (
	"testing"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmptyBatch(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalInvoices)
	assert.Equal(t, 0.0, summary.TotalAmount)
	assert.Equal(t, 0.0, summary.ComplianceRate)
}

func TestSummarizeCountsAndTotals(t *testing.T) {
	analyses := []models.InvoiceAnalysis{
		{Status: models.StatusApproved, Amount: 150, ReimbursableAmount: 150},
		{Status: models.StatusApproved, Amount: 100, ReimbursableAmount: 100},
		{Status: models.StatusDeclined, Amount: 900, ReimbursableAmount: 0},
		{Status: models.StatusPartialApproved, Amount: 350, ReimbursableAmount: 200},
		{Status: models.StatusPendingReview, Amount: 0, ReimbursableAmount: 0},
	}

	summary := Summarize(analyses)

	assert.Equal(t, 5, summary.TotalInvoices)
	assert.Equal(t, 2, summary.Approved)
	assert.Equal(t, 1, summary.Declined)
	assert.Equal(t, 1, summary.PartialApproved)
	assert.Equal(t, 1500.0, summary.TotalAmount)
	assert.Equal(t, 450.0, summary.TotalReimbursable)
	assert.Equal(t, 40.0, summary.ComplianceRate)

	// pending_review is counted in the total but in no outcome bucket
	assert.LessOrEqual(t,
		summary.Approved+summary.Declined+summary.PartialApproved,
		summary.TotalInvoices)
}

func TestSummarizeComplianceRateRounding(t *testing.T) {
	analyses := []models.InvoiceAnalysis{
		{Status: models.StatusApproved},
		{Status: models.StatusDeclined},
		{Status: models.StatusDeclined},
	}

	summary := Summarize(analyses)

	// 1/3 of invoices approved, rounded to one decimal
	assert.InDelta(t, 33.3, summary.ComplianceRate, 0.05)
}

func TestSummarizeAmountRounding(t *testing.T) {
	analyses := []models.InvoiceAnalysis{
		{Status: models.StatusApproved, Amount: 10.333, ReimbursableAmount: 10.333},
		{Status: models.StatusApproved, Amount: 10.333, ReimbursableAmount: 10.333},
	}

	summary := Summarize(analyses)

	assert.Equal(t, 20.67, summary.TotalAmount)
	assert.Equal(t, 20.67, summary.TotalReimbursable)
	assert.Equal(t, 100.0, summary.ComplianceRate)
}
