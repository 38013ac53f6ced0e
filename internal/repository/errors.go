package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// StoreError wraps any failure reported by the database while touching a booking row.
type StoreError struct {
	Op        string
	BookingID string
	SQLState  string
	Err       error
}

func newStoreError(op, bookingID string, err error) *StoreError {
	se := &StoreError{Op: op, BookingID: bookingID, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.SQLState = pgErr.Code
	}
	return se
}

func (e *StoreError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("store: %s booking %s: sqlstate %s: %v", e.Op, e.BookingID, e.SQLState, e.Err)
	}
	return fmt.Sprintf("store: %s booking %s: %v", e.Op, e.BookingID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
