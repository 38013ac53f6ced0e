package payment

import (
	"context"

	"paybridge/internal/pkg/xendit"
	"paybridge/internal/repository"
)

type invoiceProvider interface {
	CreateInvoice(ctx context.Context, p xendit.CreateInvoiceParams) (*xendit.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error)
}

type bookingStore interface {
	MarkPaidAndConfirmed(ctx context.Context, bookingID string) (repository.MarkResult, error)
}
