package ai

import (
	"fmt"
	"strings"

	"github.com/iaisolution/invoice-reimbursement/internal/config"
)

// maxChatContextDocs caps how many retrieved documents are embedded in a
// chat prompt.
const maxChatContextDocs = 5

// policyText renders the policy threshold table for embedding in prompts
func policyText(p config.PolicyConfig) string {
	cur := p.CurrencySymbol
	alcoholRule := ""
	if p.DeclineAlcohol {
		alcoholRule = " (NO ALCOHOL - automatic decline)"
	}
	return fmt.Sprintf(`- Food & Beverages: %s%.0f per meal%s
- Travel: %s%.0f per trip + %s%.0f daily office cabs
- Accommodation: %s%.0f per night
- Submit within %d days with receipts`,
		cur, p.MealCap, alcoholRule,
		cur, p.TripCap, cur, p.DailyTransportCap,
		cur, p.NightlyLodgingCap,
		p.SubmissionWindowDays)
}

// buildAnalysisPrompt builds the fixed-template prompt for classifying one
// invoice. The output schema example keeps the model's JSON shape stable.
func buildAnalysisPrompt(p config.PolicyConfig, invoiceText, filename, employeeName string) string {
	cur := p.CurrencySymbol
	return fmt.Sprintf(`Analyze this invoice text against the company reimbursement policy.

COMPANY POLICY:
%s

INVOICE TEXT:
%s

EMPLOYEE: %s
FILENAME: %s

Return ONLY valid JSON with this exact structure:
{
    "invoice_id": "receipt_number_or_filename",
    "employee_name": "%s",
    "vendor_name": "vendor_name",
    "date": "YYYY-MM-DD",
    "amount": 0.0,
    "category": "food",
    "items": [{"description": "item", "quantity": 1, "unit_price": 0.0, "amount": 0.0}],
    "status": "approved",
    "reimbursable_amount": 0.0,
    "policy_violations": [],
    "reasoning": "explanation",
    "contains_alcohol": false,
    "submission_date_valid": true
}

ANALYSIS RULES:
1. ANY alcohol (wine, whisky, beer, vodka, rum, spirits) -> status="declined", reimbursable_amount=0
2. Food > %s%.0f -> status="partial_approved", reimbursable_amount=%.0f
3. Travel > %s%.0f -> status="partial_approved", reimbursable_amount=%.0f
4. Daily transport > %s%.0f -> status="partial_approved", reimbursable_amount=%.0f
5. Detect alcohol keywords carefully in item descriptions`,
		policyText(p), invoiceText, employeeName, filename, employeeName,
		cur, p.MealCap, p.MealCap,
		cur, p.TripCap, p.TripCap,
		cur, p.DailyTransportCap, p.DailyTransportCap)
}

// buildChatPrompt builds the prompt for answering a query over previously
// analyzed invoices.
func buildChatPrompt(p config.PolicyConfig, query string, contextDocs []string) string {
	if len(contextDocs) > maxChatContextDocs {
		contextDocs = contextDocs[:maxChatContextDocs]
	}
	contextText := "No relevant documents found."
	if len(contextDocs) > 0 {
		contextText = strings.Join(contextDocs, "\n\n")
	}

	return fmt.Sprintf(`You are an assistant for the Invoice Reimbursement System.

CONTEXT FROM DATABASE:
%s

USER QUERY: %s

COMPANY POLICY:
%s

Provide a helpful response in markdown format based on the context.`,
		contextText, query, policyText(p))
}
