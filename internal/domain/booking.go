package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// Booking is owned by the frontend; this service only flips its payment fields.
// Stored values are the frontend's capitalized enum names.
type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'Pending'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'Unpaid'"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
