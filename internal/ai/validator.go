package ai

import (
	"strconv"
	"strings"

	"github.com/iaisolution/invoice-reimbursement/internal/models"
)

// Normalize turns an untyped analysis mapping into a structurally complete
// record. Missing fields get fixed defaults, unknown enum values fall back
// to their defaults, and the two money fields are coerced together: if
// either fails to parse, both become zero. Normalize never fails and is
// idempotent, so it is safe to run on records that already passed through
// it (including fallback records).
//
// Cross-field consistency is deliberately not checked here: the record may
// claim reimbursable_amount greater than amount, carry an oddly formatted
// date, or pair an approved status with listed violations. Those stay as
// the model produced them.
func Normalize(raw map[string]interface{}, filename, employeeName string) models.InvoiceAnalysis {
	result := models.InvoiceAnalysis{
		InvoiceID:           stringField(raw, "invoice_id", filename),
		EmployeeName:        stringField(raw, "employee_name", employeeName),
		VendorName:          stringField(raw, "vendor_name", "Unknown Vendor"),
		Date:                stringField(raw, "date", ""),
		Category:            normalizeCategory(stringField(raw, "category", "")),
		Items:               normalizeItems(raw["items"]),
		Status:              normalizeStatus(stringField(raw, "status", "")),
		PolicyViolations:    stringSliceField(raw, "policy_violations"),
		Reasoning:           stringField(raw, "reasoning", "Analysis completed"),
		ContainsAlcohol:     boolField(raw, "contains_alcohol", false),
		SubmissionDateValid: boolField(raw, "submission_date_valid", true),
	}

	amount, amountOK := floatField(raw, "amount")
	reimbursable, reimbOK := floatField(raw, "reimbursable_amount")
	if amountOK && reimbOK {
		result.Amount = amount
		result.ReimbursableAmount = reimbursable
	}

	if result.Reasoning == "" {
		result.Reasoning = "Analysis completed"
	}
	return result
}

func normalizeCategory(value string) models.ExpenseCategory {
	switch models.ExpenseCategory(value) {
	case models.CategoryFood, models.CategoryTravel,
		models.CategoryAccommodation, models.CategoryTransport:
		return models.ExpenseCategory(value)
	default:
		return models.CategoryFood
	}
}

func normalizeStatus(value string) models.ReimbursementStatus {
	switch models.ReimbursementStatus(value) {
	case models.StatusApproved, models.StatusDeclined,
		models.StatusPartialApproved, models.StatusPendingReview:
		return models.ReimbursementStatus(value)
	default:
		return models.StatusPendingReview
	}
}

func normalizeItems(value interface{}) []models.InvoiceLineItem {
	items := []models.InvoiceLineItem{}
	entries, ok := value.([]interface{})
	if !ok {
		return items
	}
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		item := models.InvoiceLineItem{
			Description: stringField(fields, "description", "Unknown Item"),
			Quantity:    1,
		}
		if value, present := fields["quantity"]; present {
			if quantity, ok := toFloat(value); ok && quantity >= 0 {
				item.Quantity = int(quantity)
			}
		}
		if unitPrice, ok := toFloat(fields["unit_price"]); ok {
			item.UnitPrice = unitPrice
		}
		if amount, ok := toFloat(fields["amount"]); ok {
			item.Amount = amount
		}
		items = append(items, item)
	}
	return items
}

func stringField(raw map[string]interface{}, key, fallback string) string {
	if value, ok := raw[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// floatField coerces one money field. An absent key defaults to zero and
// counts as success; a present value that cannot be coerced (including an
// explicit null) is a failure.
func floatField(raw map[string]interface{}, key string) (float64, bool) {
	value, present := raw[key]
	if !present {
		return 0, true
	}
	return toFloat(value)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func boolField(raw map[string]interface{}, key string, fallback bool) bool {
	if value, ok := raw[key].(bool); ok {
		return value
	}
	return fallback
}

func stringSliceField(raw map[string]interface{}, key string) []string {
	values := []string{}
	entries, ok := raw[key].([]interface{})
	if !ok {
		return values
	}
	for _, entry := range entries {
		if text, ok := entry.(string); ok {
			values = append(values, text)
		}
	}
	return values
}
