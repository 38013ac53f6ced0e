package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"paybridge/internal/domain"
	"paybridge/internal/pkg/xendit"
	"paybridge/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockInvoiceProvider struct {
	mock.Mock
}

func (m *MockInvoiceProvider) CreateInvoice(ctx context.Context, p xendit.CreateInvoiceParams) (*xendit.Invoice, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*xendit.Invoice), args.Error(1)
}

func (m *MockInvoiceProvider) GetInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*xendit.Invoice), args.Error(1)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) MarkPaidAndConfirmed(ctx context.Context, bookingID string) (repository.MarkResult, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(repository.MarkResult), args.Error(1)
}

var fixedNow = time.UnixMilli(1690000000000)

func newTestService(provider invoiceProvider, store bookingStore, log *zap.Logger) *Service {
	return NewService(provider, store, log, Options{
		FrontendURL: "https://book.example.com/",
		Currency:    "PHP",
		Now:         func() time.Time { return fixedNow },
	})
}

func TestCreateCheckout_Success(t *testing.T) {
	provider := new(MockInvoiceProvider)
	store := new(MockBookingStore)
	svc := newTestService(provider, store, zap.NewNop())

	provider.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(p xendit.CreateInvoiceParams) bool {
		return p.ExternalID == "booking_42_1690000000000" &&
			p.Amount == 1000 &&
			p.Currency == "PHP" &&
			p.PayerEmail == "guest@example.com" &&
			p.SuccessRedirectURL == "https://book.example.com/payment-success?booking_id=42" &&
			p.FailureRedirectURL == "https://book.example.com/payment-failed?booking_id=42" &&
			p.Metadata["booking_id"] == "42" &&
			p.Metadata["remarks"] == "late check-in"
	})).Return(&xendit.Invoice{ID: "inv_1", InvoiceURL: "https://checkout.example/inv_1"}, nil)

	res, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{
		BookingID:     "42",
		Amount:        1000,
		Description:   "Room 7, 2 nights",
		Remarks:       "late check-in",
		CustomerEmail: "guest@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/inv_1", res.CheckoutURL)
	assert.Equal(t, "inv_1", res.InvoiceID)
	assert.Regexp(t, `^booking_42_\d+$`, res.ExternalID)
	provider.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkPaidAndConfirmed", mock.Anything, mock.Anything)
}

func TestCreateCheckout_ProviderError(t *testing.T) {
	provider := new(MockInvoiceProvider)
	svc := newTestService(provider, new(MockBookingStore), zap.NewNop())

	provider.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(nil, &xendit.ProviderError{Op: "create invoice", StatusCode: http.StatusUnauthorized})

	res, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{BookingID: "42", Amount: 1000})

	assert.Nil(t, res)
	var pe *xendit.ProviderError
	assert.True(t, errors.As(err, &pe))
}

func TestCreateCheckout_InvalidRequest(t *testing.T) {
	provider := new(MockInvoiceProvider)
	svc := newTestService(provider, new(MockBookingStore), zap.NewNop())

	_, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{BookingID: "  ", Amount: 1000})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CreateCheckout(context.Background(), CreateCheckoutRequest{BookingID: "42", Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	provider.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestReconcile_NonPaidStatusesAreNoOps(t *testing.T) {
	store := new(MockBookingStore)
	svc := newTestService(new(MockInvoiceProvider), store, zap.NewNop())

	for _, status := range []domain.InvoiceStatus{
		domain.InvoicePending, domain.InvoiceExpired, domain.InvoiceFailed, domain.InvoiceSettled, "", "REFUNDED",
	} {
		res, err := svc.Reconcile(context.Background(), SourceWebhook, domain.PaymentEvent{
			Status:     status,
			ExternalID: "booking_42_169000",
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, res.Outcome, string(status))
	}
	store.AssertNotCalled(t, "MarkPaidAndConfirmed", mock.Anything, mock.Anything)
}

func TestReconcile_UnresolvedIsLoggedNotFailed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := new(MockBookingStore)
	svc := newTestService(new(MockInvoiceProvider), store, zap.New(core))

	res, err := svc.Reconcile(context.Background(), SourceWebhook, domain.PaymentEvent{
		Status:     domain.InvoicePaid,
		ExternalID: "unrecognized",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnresolved, res.Outcome)
	assert.Empty(t, res.BookingID)
	store.AssertNotCalled(t, "MarkPaidAndConfirmed", mock.Anything, mock.Anything)

	entries := logs.FilterMessage("unresolved payment event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unrecognized", entries[0].ContextMap()["external_id"])
}

func TestReconcile_PaidOutcomes(t *testing.T) {
	cases := []struct {
		name string
		mark repository.MarkResult
		want Outcome
	}{
		{name: "applied", mark: repository.MarkResult{RowsAffected: 1, Found: true}, want: OutcomeApplied},
		{name: "already applied", mark: repository.MarkResult{Found: true}, want: OutcomeAlreadyApplied},
		{name: "unknown booking", mark: repository.MarkResult{}, want: OutcomeBookingNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockBookingStore)
			store.On("MarkPaidAndConfirmed", mock.Anything, "42").Return(tc.mark, nil).Once()
			svc := newTestService(new(MockInvoiceProvider), store, zap.NewNop())

			res, err := svc.Reconcile(context.Background(), SourceWebhook, domain.PaymentEvent{
				Status:     domain.InvoicePaid,
				ExternalID: "booking_42_169000",
			})

			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Outcome)
			assert.Equal(t, "42", res.BookingID)
			store.AssertExpectations(t)
		})
	}
}

func TestReconcile_StoreErrorPropagates(t *testing.T) {
	store := new(MockBookingStore)
	storeErr := &repository.StoreError{Op: "mark paid", BookingID: "42", Err: errors.New("connection reset")}
	store.On("MarkPaidAndConfirmed", mock.Anything, "42").Return(repository.MarkResult{}, storeErr)
	svc := newTestService(new(MockInvoiceProvider), store, zap.NewNop())

	_, err := svc.HandleWebhook(context.Background(), WebhookPayload{Status: "PAID", ExternalID: "booking_42_169000"})

	var se *repository.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "42", se.BookingID)
}

func TestHandleWebhook_NormalizesStatus(t *testing.T) {
	store := new(MockBookingStore)
	store.On("MarkPaidAndConfirmed", mock.Anything, "42").Return(repository.MarkResult{RowsAffected: 1, Found: true}, nil)
	svc := newTestService(new(MockInvoiceProvider), store, zap.NewNop())

	res, err := svc.HandleWebhook(context.Background(), WebhookPayload{Status: " paid ", ExternalID: "booking_42_169000"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
}

func TestVerifyPayment_PaidConfirmsBooking(t *testing.T) {
	provider := new(MockInvoiceProvider)
	store := new(MockBookingStore)
	provider.On("GetInvoice", mock.Anything, "inv_1").
		Return(&xendit.Invoice{ID: "inv_1", Status: "PAID", ExternalID: "booking_42_169000"}, nil)
	store.On("MarkPaidAndConfirmed", mock.Anything, "42").Return(repository.MarkResult{RowsAffected: 1, Found: true}, nil)
	svc := newTestService(provider, store, zap.NewNop())

	res, err := svc.VerifyPayment(context.Background(), "inv_1")

	require.NoError(t, err)
	assert.Equal(t, "PAID", res.Status)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, "42", res.BookingID)
}

func TestVerifyPayment_PendingDoesNotTouchStore(t *testing.T) {
	provider := new(MockInvoiceProvider)
	store := new(MockBookingStore)
	provider.On("GetInvoice", mock.Anything, "inv_1").
		Return(&xendit.Invoice{ID: "inv_1", Status: "PENDING", ExternalID: "booking_42_169000"}, nil)
	svc := newTestService(provider, store, zap.NewNop())

	res, err := svc.VerifyPayment(context.Background(), "inv_1")

	require.NoError(t, err)
	assert.Equal(t, "PENDING", res.Status)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	store.AssertNotCalled(t, "MarkPaidAndConfirmed", mock.Anything, mock.Anything)
}

func TestVerifyPayment_ProviderError(t *testing.T) {
	provider := new(MockInvoiceProvider)
	provider.On("GetInvoice", mock.Anything, "inv_1").
		Return(nil, &xendit.ProviderError{Op: "get invoice", Err: errors.New("dial tcp: timeout")})
	svc := newTestService(provider, new(MockBookingStore), zap.NewNop())

	res, err := svc.VerifyPayment(context.Background(), "inv_1")

	assert.Nil(t, res)
	var pe *xendit.ProviderError
	assert.True(t, errors.As(err, &pe))
}
