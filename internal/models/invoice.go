package models

// ExpenseCategory classifies what an invoice was for
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "food"
	CategoryTravel        ExpenseCategory = "travel"
	CategoryAccommodation ExpenseCategory = "accommodation"
	CategoryTransport     ExpenseCategory = "transport"
)

// ReimbursementStatus is the outcome of analyzing one invoice
type ReimbursementStatus string

const (
	StatusApproved        ReimbursementStatus = "approved"
	StatusDeclined        ReimbursementStatus = "declined"
	StatusPartialApproved ReimbursementStatus = "partial_approved"
	StatusPendingReview   ReimbursementStatus = "pending_review"
)

// InvoiceLineItem is a single line on an invoice
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// InvoiceAnalysis is the complete analysis of a single invoice.
// Field names and JSON tags mirror the schema the model is asked to return.
type InvoiceAnalysis struct {
	InvoiceID           string              `json:"invoice_id"`
	EmployeeName        string              `json:"employee_name"`
	VendorName          string              `json:"vendor_name"`
	Date                string              `json:"date,omitempty"`
	Amount              float64             `json:"amount"`
	Category            ExpenseCategory     `json:"category"`
	Items               []InvoiceLineItem   `json:"items"`
	Status              ReimbursementStatus `json:"status"`
	ReimbursableAmount  float64             `json:"reimbursable_amount"`
	PolicyViolations    []string            `json:"policy_violations"`
	Reasoning           string              `json:"reasoning"`
	ContainsAlcohol     bool                `json:"contains_alcohol"`
	SubmissionDateValid bool                `json:"submission_date_valid"`
}

// BatchSummary aggregates one batch of invoice analyses.
// It is recomputed from the record list and never stored on its own.
type BatchSummary struct {
	TotalInvoices     int     `json:"total_invoices"`
	Approved          int     `json:"approved"`
	Declined          int     `json:"declined"`
	PartialApproved   int     `json:"partial_approved"`
	TotalAmount       float64 `json:"total_amount"`
	TotalReimbursable float64 `json:"total_reimbursable"`
	ComplianceRate    float64 `json:"compliance_rate"`
}

// AnalysisResponse is the result of analyzing a batch of invoices
type AnalysisResponse struct {
	AnalysisResults []InvoiceAnalysis `json:"analysis_results"`
	Summary         BatchSummary      `json:"summary"`
	ProcessingTime  float64           `json:"processing_time"`
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
}

// ChatRequest is a query against previously analyzed invoices
type ChatRequest struct {
	Query          string `json:"query" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the assistant's answer with document provenance
type ChatResponse struct {
	Response       string   `json:"response"`
	Sources        []string `json:"sources"`
	ConversationID string   `json:"conversation_id"`
	Success        bool     `json:"success"`
}

// ConversationTurn is one utterance in a chat session
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
