package aggregate

import "strings"

// Status is a canonicalized lifecycle state. Bookings and bills use
// disjoint closed sets; raw values normalize case-insensitively and
// unknown values fall back to the set's conservative default.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"

	StatusPaid   Status = "PAID"
	StatusUnpaid Status = "UNPAID"
)

// Canonicalizer maps a raw status string into one closed set.
type Canonicalizer func(raw string) Status

// BookingStatuses is the closed set for bookings, in display order.
var BookingStatuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// BillStatuses is the closed set for bills, in display order.
var BillStatuses = []Status{StatusPaid, StatusUnpaid, StatusCancelled}

// CanonicalBookingStatus normalizes a raw booking status. Unknown or empty
// values default to PENDING.
func CanonicalBookingStatus(raw string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusConfirmed:
		return StatusConfirmed
	case StatusCancelled:
		return StatusCancelled
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// CanonicalBillStatus normalizes a raw bill status. Unknown or empty
// values default to UNPAID.
func CanonicalBillStatus(raw string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPaid:
		return StatusPaid
	case StatusCancelled:
		return StatusCancelled
	default:
		return StatusUnpaid
	}
}
