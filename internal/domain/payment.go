package domain

// InvoiceStatus mirrors the provider's invoice states. Only InvoicePaid triggers a booking update.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceSettled InvoiceStatus = "SETTLED"
	InvoiceExpired InvoiceStatus = "EXPIRED"
	InvoiceFailed  InvoiceStatus = "FAILED"
)

// InvoiceReference ties a provider invoice to the external id we generated for it.
// It is never persisted.
type InvoiceReference struct {
	ExternalID string `json:"external_id"`
	InvoiceID  string `json:"invoice_id"`
}

// PaymentEvent is a status observation for one invoice, either polled or pushed by webhook.
type PaymentEvent struct {
	InvoiceID  string         `json:"id,omitempty"`
	Status     InvoiceStatus  `json:"status"`
	ExternalID string         `json:"external_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
