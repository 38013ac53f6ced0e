package payment

import (
	"strconv"
	"strings"
	"time"
)

const externalIDPrefix = "booking_"

// NewExternalID encodes a booking id as booking_<id>_<unix millis>. The timestamp keeps
// repeated checkouts for the same booking distinct on the provider side.
func NewExternalID(bookingID string, at time.Time) string {
	return externalIDPrefix + bookingID + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

// ExtractBookingID is the inverse of NewExternalID. It reports false for any identifier that
// was not produced by it; such events are unresolved, not errors.
func ExtractBookingID(externalID string) (string, bool) {
	rest, ok := strings.CutPrefix(externalID, externalIDPrefix)
	if !ok {
		return "", false
	}
	sep := strings.LastIndexByte(rest, '_')
	if sep <= 0 {
		return "", false
	}
	ts := rest[sep+1:]
	if ts == "" || strings.IndexFunc(ts, notDigit) >= 0 {
		return "", false
	}
	return rest[:sep], true
}

func notDigit(r rune) bool { return r < '0' || r > '9' }
