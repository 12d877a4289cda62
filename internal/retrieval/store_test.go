package retrieval

import (
	"fmt"
	"testing"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func storedAnalysis(id, employee, reasoning string) models.InvoiceAnalysis {
	return models.InvoiceAnalysis{
		InvoiceID:    id,
		EmployeeName: employee,
		VendorName:   "Cafe Aroma",
		Amount:       100,
		Category:     models.CategoryFood,
		Status:       models.StatusApproved,
		Reasoning:    reasoning,
	}
}

func TestSearchMatchesTokenAnywhere(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-1", "Priya Sharma", "within meal cap"), "lunch at cafe")
	store.StoreAnalysis(storedAnalysis("INV-2", "Arun Mehta", "declined for alcohol"), "two glasses of wine")

	results := store.Search("wine", 5)

	require.Len(t, results, 1)
	assert.Contains(t, results[0], "INV-2")
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-1", "Priya Sharma", "within meal cap"), "LUNCH RECEIPT")

	assert.Len(t, store.Search("lunch", 5), 1)
	assert.Len(t, store.Search("PRIYA", 5), 1)
}

func TestSearchAnyTokenMatches(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-1", "Priya Sharma", "within meal cap"), "taxi fare downtown")

	// One matching token is enough even when others miss
	results := store.Search("zeppelin taxi", 5)
	assert.Len(t, results, 1)
}

func TestSearchHonorsMaxResults(t *testing.T) {
	store := NewStore(zap.NewNop())
	for i := 0; i < 10; i++ {
		store.StoreAnalysis(storedAnalysis(fmt.Sprintf("INV-%d", i), "Priya Sharma", "ok"), "shared token")
	}

	assert.Len(t, store.Search("shared", 3), 3)
	assert.Len(t, store.Search("shared", 100), 10)
}

func TestSearchReturnsNewestFirst(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-old", "Priya Sharma", "ok"), "shared token")
	store.StoreAnalysis(storedAnalysis("INV-new", "Priya Sharma", "ok"), "shared token")

	results := store.Search("shared", 2)

	require.Len(t, results, 2)
	assert.Contains(t, results[0], "INV-new")
	assert.Contains(t, results[1], "INV-old")
}

func TestSearchWindowExcludesOldDocuments(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-ancient", "Priya Sharma", "ok"), "needle")
	for i := 0; i < searchWindow; i++ {
		store.StoreAnalysis(storedAnalysis(fmt.Sprintf("INV-%d", i), "Priya Sharma", "ok"), "hay")
	}

	// The matching document fell out of the recency window
	assert.Empty(t, store.Search("needle", 5))
	assert.Equal(t, searchWindow+1, store.Len())
}

func TestSearchEmptyQuery(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.StoreAnalysis(storedAnalysis("INV-1", "Priya Sharma", "ok"), "text")

	assert.Empty(t, store.Search("", 5))
	assert.Empty(t, store.Search("   ", 5))
	assert.Empty(t, store.Search("text", 0))
}

func TestFormattedDocumentCarriesAnalysisFields(t *testing.T) {
	store := NewStore(zap.NewNop())
	analysis := storedAnalysis("INV-7", "Arun Mehta", "declined for alcohol")
	analysis.Status = models.StatusDeclined
	analysis.Items = []models.InvoiceLineItem{{Description: "Whisky", Quantity: 1}}
	store.StoreAnalysis(analysis, "bar receipt")

	results := store.Search("whisky", 1)

	require.Len(t, results, 1)
	assert.Contains(t, results[0], "Invoice: INV-7")
	assert.Contains(t, results[0], "Employee: Arun Mehta")
	assert.Contains(t, results[0], "Status: declined")
	assert.Contains(t, results[0], "Items: Whisky")
}
