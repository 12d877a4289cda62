package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"github.com/iaisolution/invoice-reimbursement/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepository(t *testing.T) *AnalysisRepository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run("../../migrations"))
	return NewAnalysisRepository(db, zap.NewNop())
}

func persistedAnalysis(id, employee string, status models.ReimbursementStatus) models.InvoiceAnalysis {
	return models.InvoiceAnalysis{
		InvoiceID:           id,
		EmployeeName:        employee,
		VendorName:          "Cafe Aroma",
		Date:                "2026-08-15",
		Amount:              350,
		Category:            models.CategoryFood,
		Items:               []models.InvoiceLineItem{},
		Status:              status,
		ReimbursableAmount:  200,
		PolicyViolations:    []string{"exceeds meal cap"},
		Reasoning:           "Over the meal cap",
		SubmissionDateValid: true,
	}
}

func TestSaveAndListByEmployee(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := persistedAnalysis("INV-1", "Priya Sharma", models.StatusPartialApproved)
	first.Items = []models.InvoiceLineItem{
		{Description: "Lunch", Quantity: 1, UnitPrice: 350, Amount: 350},
	}
	require.NoError(t, repo.Save(ctx, first, "lunch receipt text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-2", "Priya Sharma", models.StatusApproved), "taxi receipt text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-3", "Arun Mehta", models.StatusDeclined), "bar receipt text"))

	analyses, err := repo.ListByEmployee(ctx, "Priya Sharma", 10)
	require.NoError(t, err)

	require.Len(t, analyses, 2)
	assert.Equal(t, "INV-2", analyses[0].InvoiceID)
	assert.Equal(t, "INV-1", analyses[1].InvoiceID)
	assert.Equal(t, "Cafe Aroma", analyses[1].VendorName)
	assert.Equal(t, "2026-08-15", analyses[1].Date)
	assert.Equal(t, 350.0, analyses[1].Amount)
	assert.Equal(t, models.CategoryFood, analyses[1].Category)
	assert.Equal(t, models.StatusPartialApproved, analyses[1].Status)
	assert.Equal(t, 200.0, analyses[1].ReimbursableAmount)
	assert.Equal(t, []string{"exceeds meal cap"}, analyses[1].PolicyViolations)
	assert.True(t, analyses[1].SubmissionDateValid)
}

func TestListByEmployeeHonorsLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-1", "Priya Sharma", models.StatusApproved), "text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-2", "Priya Sharma", models.StatusApproved), "text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-3", "Priya Sharma", models.StatusApproved), "text"))

	analyses, err := repo.ListByEmployee(ctx, "Priya Sharma", 2)
	require.NoError(t, err)

	require.Len(t, analyses, 2)
	assert.Equal(t, "INV-3", analyses[0].InvoiceID)
}

func TestListByEmployeeUnknownEmployee(t *testing.T) {
	repo := newTestRepository(t)

	analyses, err := repo.ListByEmployee(context.Background(), "Nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestCountByStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-1", "Priya Sharma", models.StatusApproved), "text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-2", "Priya Sharma", models.StatusApproved), "text"))
	require.NoError(t, repo.Save(ctx, persistedAnalysis("INV-3", "Arun Mehta", models.StatusDeclined), "text"))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"approved": 2,
		"declined": 1,
	}, counts)
}
