// Package aggregate derives read-only summary metrics from joined view
// records: monthly count histograms, status histograms, commission-adjusted
// revenue and recent-activity projections. Every function here is pure —
// the same snapshot and parameters always yield the same output, and the
// input collection is never mutated.
package aggregate

import (
	"sort"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/join"
	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/shopspring/decimal"
)

// commissionRate is the platform's fixed 20% cut of every paid bill.
// Business rule: multiply per bill, then sum. No per-record rounding.
var commissionRate = decimal.RequireFromString("0.20")

// DefaultRecentLimit is the reference size of the recent-activity panel.
const DefaultRecentLimit = 5

// Window selects a reporting month.
type Window struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// Contains reports whether a timestamp falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return t.Year() == w.Year && t.Month() == w.Month
}

// Bucket is the derived summary over one snapshot for one window.
type Bucket struct {
	Window        Window          `json:"window"`
	StatusCounts  map[Status]int  `json:"statusCounts"`
	MonthlyCounts [12]int         `json:"monthlyCounts"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// activityDate resolves the date a record is bucketed by: creation date
// first, the primary date field second.
func activityDate(v join.ViewRecord) (time.Time, bool) {
	if t, ok := record.Time(v, record.SemCreatedAt); ok {
		return t, true
	}
	return record.Time(v, record.SemDate)
}

// MonthlyCounts buckets records into 12 per-month counters for one year.
// Records whose activity date fails to parse are excluded from the
// histogram (they still remain in the collection for everything else).
func MonthlyCounts(records []join.ViewRecord, year int) [12]int {
	var counts [12]int
	for _, v := range records {
		t, ok := activityDate(v)
		if !ok || t.Year() != year {
			continue
		}
		counts[int(t.Month())-1]++
	}
	return counts
}

// StatusCounts builds the count-by-status histogram under the given
// canonicalization. Every member of the closed set appears in the result,
// zero-valued when unseen, so chart rendering never probes for keys.
func StatusCounts(records []join.ViewRecord, domain []Status, canon Canonicalizer) map[Status]int {
	counts := make(map[Status]int, len(domain))
	for _, s := range domain {
		counts[s] = 0
	}
	for _, v := range records {
		counts[canon(record.String(v, record.SemStatus))]++
	}
	return counts
}

// Revenue sums the platform commission over bills that are canonically
// PAID and whose payment date falls inside the window.
func Revenue(bills []join.ViewRecord, w Window) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if CanonicalBillStatus(record.String(b, record.SemStatus)) != StatusPaid {
			continue
		}
		paidAt, ok := record.Time(b, record.SemPaidAt)
		if !ok || !w.Contains(paidAt) {
			continue
		}
		total = total.Add(record.Decimal(b, record.SemFinalValue).Mul(commissionRate))
	}
	return total
}

// RecentFields is the stable projection exposed by Recent.
var RecentFields = []string{
	record.SemID,
	record.SemStatus,
	record.SemCreatedAt,
	join.FieldStadiumName,
	join.FieldOwnerName,
}

// Recent returns the n most recently created records, newest first,
// projected to RecentFields. The input collection is left untouched.
func Recent(records []join.ViewRecord, n int) []join.ViewRecord {
	if n <= 0 {
		return nil
	}

	ordered := make([]join.ViewRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, _ := record.Time(ordered[i], record.SemCreatedAt)
		tj, _ := record.Time(ordered[j], record.SemCreatedAt)
		return ti.After(tj)
	})

	if n > len(ordered) {
		n = len(ordered)
	}
	out := make([]join.ViewRecord, 0, n)
	for _, v := range ordered[:n] {
		projected := make(join.ViewRecord, len(RecentFields))
		for _, f := range RecentFields {
			if val, ok := record.Resolve(v, f); ok {
				projected[f] = val
			}
		}
		out = append(out, projected)
	}
	return out
}

// BuildBucket assembles the full summary for one window: booking-domain
// status and monthly histograms over records, commission revenue over
// bills. A screen without a bill source passes nil bills and gets zero
// revenue.
func BuildBucket(records, bills []join.ViewRecord, domain []Status, canon Canonicalizer, w Window) Bucket {
	return Bucket{
		Window:        w,
		StatusCounts:  StatusCounts(records, domain, canon),
		MonthlyCounts: MonthlyCounts(records, w.Year),
		Revenue:       Revenue(bills, w),
	}
}
