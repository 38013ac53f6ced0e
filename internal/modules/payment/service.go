package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"paybridge/internal/domain"
	"paybridge/internal/metrics"
	"paybridge/internal/pkg/xendit"

	"go.uber.org/zap"
)

type Options struct {
	// FrontendURL is the base for the success/failure redirect pages.
	FrontendURL string
	Currency    string
	Now         func() time.Time
}

// Service creates invoices and reconciles payment events against bookings. Both the manual
// verify path and the webhook path go through Reconcile, so whichever observes PAID first
// confirms the booking and the other becomes a no-op.
type Service struct {
	provider invoiceProvider
	bookings bookingStore
	log      *zap.Logger

	frontendURL string
	currency    string
	now         func() time.Time
}

func NewService(provider invoiceProvider, bookings bookingStore, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		provider:    provider,
		bookings:    bookings,
		log:         log,
		frontendURL: strings.TrimRight(opts.FrontendURL, "/"),
		currency:    opts.Currency,
		now:         opts.Now,
	}
}

type CheckoutResult struct {
	CheckoutURL string
	InvoiceID   string
	ExternalID  string
}

func (s *Service) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutResult, error) {
	bookingID := strings.TrimSpace(string(req.BookingID))
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking_id is required", ErrInvalidRequest)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	ref := domain.InvoiceReference{ExternalID: NewExternalID(bookingID, s.now())}
	metadata := map[string]any{"booking_id": bookingID}
	if req.Remarks != "" {
		metadata["remarks"] = req.Remarks
	}

	params := xendit.CreateInvoiceParams{
		ExternalID:         ref.ExternalID,
		Amount:             req.Amount,
		Currency:           s.currency,
		Description:        req.Description,
		PayerEmail:         req.CustomerEmail,
		SuccessRedirectURL: s.redirectURL("payment-success", bookingID),
		FailureRedirectURL: s.redirectURL("payment-failed", bookingID),
		Metadata:           metadata,
	}

	start := time.Now()
	inv, err := s.provider.CreateInvoice(ctx, params)
	observeProvider("create_invoice", start, err)
	if err != nil {
		s.log.Error("create invoice failed",
			zap.String("booking_id", bookingID),
			zap.String("external_id", ref.ExternalID),
			zap.Error(err))
		return nil, err
	}
	ref.InvoiceID = inv.ID

	s.log.Info("invoice created",
		zap.String("booking_id", bookingID),
		zap.String("external_id", ref.ExternalID),
		zap.String("invoice_id", ref.InvoiceID))

	return &CheckoutResult{CheckoutURL: inv.InvoiceURL, InvoiceID: ref.InvoiceID, ExternalID: ref.ExternalID}, nil
}

type Result struct {
	Outcome   Outcome
	BookingID string
}

type VerifyResult struct {
	Status string
	Result
}

// VerifyPayment polls the provider for the invoice and reconciles whatever it reports.
func (s *Service) VerifyPayment(ctx context.Context, invoiceID string) (*VerifyResult, error) {
	start := time.Now()
	inv, err := s.provider.GetInvoice(ctx, invoiceID)
	observeProvider("get_invoice", start, err)
	if err != nil {
		s.log.Error("fetch invoice failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, err
	}

	ev := domain.PaymentEvent{
		InvoiceID:  inv.ID,
		Status:     normalizeStatus(inv.Status),
		ExternalID: inv.ExternalID,
		Metadata:   inv.Metadata,
	}
	res, err := s.Reconcile(ctx, SourceVerify, ev)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Status: string(ev.Status), Result: res}, nil
}

func (s *Service) HandleWebhook(ctx context.Context, p WebhookPayload) (Result, error) {
	return s.Reconcile(ctx, SourceWebhook, domain.PaymentEvent{
		InvoiceID:  p.ID,
		Status:     normalizeStatus(p.Status),
		ExternalID: p.ExternalID,
		Metadata:   p.Metadata,
	})
}

// Reconcile applies one payment event. Only a store failure is returned as an error; every
// other case ends in an Outcome the caller acknowledges.
func (s *Service) Reconcile(ctx context.Context, src Source, ev domain.PaymentEvent) (Result, error) {
	log := s.log.With(
		zap.String("source", string(src)),
		zap.String("invoice_id", ev.InvoiceID),
		zap.String("external_id", ev.ExternalID),
		zap.String("status", string(ev.Status)),
	)

	if ev.Status != domain.InvoicePaid {
		log.Debug("payment event ignored")
		return s.done(src, Result{Outcome: OutcomeIgnored}), nil
	}

	bookingID, ok := ExtractBookingID(ev.ExternalID)
	if !ok {
		log.Warn("unresolved payment event", zap.Any("metadata", ev.Metadata))
		return s.done(src, Result{Outcome: OutcomeUnresolved}), nil
	}
	log = log.With(zap.String("booking_id", bookingID))

	mark, err := s.bookings.MarkPaidAndConfirmed(ctx, bookingID)
	if err != nil {
		log.Error("booking update failed", zap.Error(err))
		metrics.ReconcileOutcomesTotal.WithLabelValues(string(src), "store_error").Inc()
		return Result{BookingID: bookingID}, err
	}

	switch {
	case mark.RowsAffected > 0:
		log.Info("booking confirmed")
		return s.done(src, Result{Outcome: OutcomeApplied, BookingID: bookingID}), nil
	case mark.Found:
		log.Info("booking already confirmed")
		return s.done(src, Result{Outcome: OutcomeAlreadyApplied, BookingID: bookingID}), nil
	default:
		log.Warn("paid event for unknown booking")
		return s.done(src, Result{Outcome: OutcomeBookingNotFound, BookingID: bookingID}), nil
	}
}

func (s *Service) done(src Source, r Result) Result {
	metrics.ReconcileOutcomesTotal.WithLabelValues(string(src), string(r.Outcome)).Inc()
	return r
}

func (s *Service) redirectURL(page, bookingID string) string {
	if s.frontendURL == "" {
		return ""
	}
	return s.frontendURL + "/" + page + "?booking_id=" + url.QueryEscape(bookingID)
}

func normalizeStatus(s string) domain.InvoiceStatus {
	return domain.InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
}

func observeProvider(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ProviderRequestDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
