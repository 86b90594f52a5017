package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Semantic field names understood by the resolver. All other components
// route field access through these instead of hardcoding concrete keys;
// the variant tables below are the single point of truth for the
// naming-convention drift between resources.
const (
	SemID              = "id"
	SemBookingID       = "bookingId"
	SemUserID          = "userId"
	SemStadiumID       = "stadiumId"
	SemLocationID      = "locationId"
	SemTypeID          = "typeId"
	SemBillID          = "billId"
	SemPaymentMethodID = "paymentMethodId"
	SemStatus          = "status"
	SemCreatedAt       = "createdAt"
	SemDate            = "date"
	SemPaidAt          = "paidAt"
	SemFinalValue      = "finalValue"
	SemName            = "name"
	SemAddress         = "address"
	SemPhone           = "phone"
	SemEmail           = "email"
	SemNote            = "note"
)

// variants maps a semantic name to the ordered list of concrete field
// names to probe. Order matters: the first present, non-null variant wins.
// To support a new naming drift: add the variant here, nowhere else.
var variants = map[string][]string{
	SemID:              {"id", "_id"},
	SemBookingID:       {"bookingId", "booking_id", "idBooking"},
	SemUserID:          {"userId", "user_id", "ownerId", "owner_id", "customerId"},
	SemStadiumID:       {"stadiumId", "stadium_id", "idStadium"},
	SemLocationID:      {"locationId", "location_id", "idLocation"},
	SemTypeID:          {"typeId", "type_id", "categoryId", "category_id"},
	SemBillID:          {"billId", "bill_id", "idBill"},
	SemPaymentMethodID: {"paymentMethodId", "payment_method_id", "methodId"},
	SemStatus:          {"status", "state", "bookingStatus", "booking_status"},
	SemCreatedAt:       {"createdAt", "created_at", "dateCreate", "date_create"},
	SemDate:            {"date", "bookingDate", "booking_date", "startDate", "start_date"},
	SemPaidAt:          {"datePaid", "date_paid", "paidAt", "paid_at", "paymentDate"},
	SemFinalValue:      {"finalValue", "final_value", "finalPrice", "final_price", "totalPrice", "total_price"},
	SemName:            {"name", "fullName", "full_name", "stadiumName", "stadium_name", "username", "title"},
	SemAddress:         {"address", "addressDetail", "address_detail"},
	SemPhone:           {"phone", "phoneNumber", "phone_number"},
	SemEmail:           {"email", "mail"},
	SemNote:            {"note", "description", "comment"},
}

// Variants returns the probe order for a semantic name. Semantic names
// without a table entry probe the literal key only, so derived fields
// written by the join engine (resolvedStadiumName etc.) resolve too.
func Variants(semantic string) []string {
	if keys, ok := variants[semantic]; ok {
		return keys
	}
	return []string{semantic}
}

// Resolve returns the first present, non-null value for the semantic name
// and true, or (nil, false) when no variant is set. Pure: no side effects,
// the record is never modified.
func Resolve(r RawRecord, semantic string) (any, bool) {
	for _, key := range Variants(semantic) {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ResolveOr is Resolve with a caller-supplied fallback.
func ResolveOr(r RawRecord, semantic string, fallback any) any {
	if v, ok := Resolve(r, semantic); ok {
		return v
	}
	return fallback
}

// String resolves a semantic name and coerces it to a display string.
// Missing fields yield "".
func String(r RawRecord, semantic string) string {
	v, ok := Resolve(r, semantic)
	if !ok {
		return ""
	}
	return stringify(v)
}

// ID resolves an identifier field to its canonical string form. JSON
// numbers render without a fractional part so "7" and 7 index identically.
func ID(r RawRecord, semantic string) string {
	return String(r, semantic)
}

// Number resolves a semantic name to a float64. Missing or unparsable
// values yield 0, per the recovery policy for unparsable values.
func Number(r RawRecord, semantic string) float64 {
	v, ok := Resolve(r, semantic)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Decimal resolves a monetary field to an exact decimal. String values
// parse exactly; unparsable or missing values yield zero.
func Decimal(r RawRecord, semantic string) decimal.Decimal {
	v, ok := Resolve(r, semantic)
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// timeLayouts are the date shapes seen across the resource endpoints.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Time resolves a semantic name to a timestamp. The boolean reports
// whether a parsable value was found; callers decide between the
// exclude-from-histogram and epoch-zero recovery policies.
func Time(r RawRecord, semantic string) (time.Time, bool) {
	v, ok := Resolve(r, semantic)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		// Unix seconds, as some endpoints return numeric timestamps.
		return time.Unix(int64(t), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
