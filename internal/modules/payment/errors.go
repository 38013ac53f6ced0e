package payment

import "errors"

var ErrInvalidRequest = errors.New("invalid payment request")

// Outcome is the terminal state of one reconciliation.
type Outcome string

const (
	// OutcomeIgnored: the event status is not PAID, nothing to do.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnresolved: PAID, but the external id does not name a booking.
	OutcomeUnresolved Outcome = "unresolved"
	// OutcomeApplied: this call moved the booking to paid/confirmed.
	OutcomeApplied Outcome = "applied"
	// OutcomeAlreadyApplied: the booking was already paid/confirmed; the call was a no-op.
	OutcomeAlreadyApplied Outcome = "already_applied"
	// OutcomeBookingNotFound: the external id resolved to an id with no booking row.
	OutcomeBookingNotFound Outcome = "booking_not_found"
)

// Source names the path that observed a payment event.
type Source string

const (
	SourceWebhook Source = "webhook"
	SourceVerify  Source = "verify"
)
