package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BookingRef accepts a booking id sent either as a JSON string or a JSON number.
type BookingRef string

func (b *BookingRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = BookingRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("booking_id must be a string or integer")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("booking_id must be a string or integer")
	}
	*b = BookingRef(n.String())
	return nil
}

type CreateCheckoutRequest struct {
	BookingID     BookingRef `json:"booking_id" binding:"required"`
	Amount        float64    `json:"amount" binding:"required,gt=0"`
	Description   string     `json:"description" binding:"max=1000"`
	Remarks       string     `json:"remarks" binding:"max=1000"`
	CustomerEmail string     `json:"customer_email" binding:"omitempty,email"`
}

type CheckoutAttributes struct {
	CheckoutURL string `json:"checkout_url"`
	InvoiceID   string `json:"invoice_id"`
}

// CheckoutData is written under the top-level "data" key.
type CheckoutData struct {
	Attributes CheckoutAttributes `json:"attributes"`
}

type VerifyResponse struct {
	Status    string `json:"status"`
	BookingID string `json:"booking_id,omitempty"`
}

// WebhookPayload is the subset of the invoice callback body the service acts on.
type WebhookPayload struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"external_id"`
	Status     string         `json:"status"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type WebhookResponse struct {
	Received bool    `json:"received"`
	Outcome  Outcome `json:"outcome"`
}
