package repository

import (
	"context"
	"errors"
	"time"

	"paybridge/internal/domain"

	"gorm.io/gorm"
)

// ErrBookingNotFound is returned by GetByID when no row has the given id.
var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db, now: time.Now}
}

// MarkResult describes what a confirmation update did to the row.
// RowsAffected == 0 with Found == true means the booking was already paid and confirmed.
type MarkResult struct {
	RowsAffected int64
	Found        bool
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, newStoreError("get", id, err)
	}
	return &b, nil
}

// MarkPaidAndConfirmed moves the booking to paid/confirmed. The update only matches rows not
// already in that state, so concurrent callers for the same id produce at most one effective
// transition and always leave the same final row.
func (r *BookingRepository) MarkPaidAndConfirmed(ctx context.Context, bookingID string) (MarkResult, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND (payment_status <> ? OR status <> ?)", bookingID, domain.PaymentPaid, domain.BookingConfirmed).
		Updates(map[string]interface{}{
			"payment_status": domain.PaymentPaid,
			"status":         domain.BookingConfirmed,
			"updated_at":     r.now().UTC(),
		})
	if res.Error != nil {
		return MarkResult{}, newStoreError("mark paid", bookingID, res.Error)
	}
	if res.RowsAffected > 0 {
		return MarkResult{RowsAffected: res.RowsAffected, Found: true}, nil
	}

	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", bookingID).Count(&existing).Error; err != nil {
		return MarkResult{}, newStoreError("count", bookingID, err)
	}
	return MarkResult{Found: existing > 0}, nil
}
