// Package query provides generic free-text search, typed multi-field
// sorting and pagination over joined view records. Search and sort are pure
// functions; the page/sort state machine lives in Session, which is the
// boundary that enforces pagination limits.
package query

import (
	"sort"
	"strings"

	"github.com/courtside-lab/project-courtside/internal/core/join"
	"github.com/courtside-lab/project-courtside/internal/core/record"
)

// FieldType selects the comparator for one sortable field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
)

// ValidFieldType reports whether ft is a known field type.
func ValidFieldType(ft FieldType) bool {
	return ft == FieldText || ft == FieldNumber || ft == FieldDate
}

// SortSpec is a sort field plus direction. Only the query engine mutates
// it, via Session.ToggleSort.
type SortSpec struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Result is one page of a filtered, sorted collection.
type Result struct {
	Records    []join.ViewRecord `json:"records"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int               `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
}

// Search returns the records where any configured field, lower-cased,
// contains the lower-cased term as a substring. An empty term matches
// everything. Fields resolve through the field resolver, so both semantic
// names and derived join keys work.
func Search(records []join.ViewRecord, term string, fields []string) []join.ViewRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]join.ViewRecord, len(records))
		copy(out, records)
		return out
	}

	var out []join.ViewRecord
	for _, v := range records {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(record.String(v, f)), term) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// Sort returns a sorted copy of records under the spec. The sort is stable:
// equal keys keep their prior relative order, and an empty spec returns the
// input order unchanged. Missing numbers compare as 0 and unparsable dates
// as the epoch, so partially loaded data still orders deterministically.
func Sort(records []join.ViewRecord, spec SortSpec, types map[string]FieldType) []join.ViewRecord {
	out := make([]join.ViewRecord, len(records))
	copy(out, records)
	if spec.Field == "" {
		return out
	}

	ft, ok := types[spec.Field]
	if !ok {
		ft = FieldText
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], spec.Field, ft)
		if spec.Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b join.ViewRecord, field string, ft FieldType) int {
	switch ft {
	case FieldNumber:
		x, y := record.Number(a, field), record.Number(b, field)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case FieldDate:
		x, y := timestamp(a, field), timestamp(b, field)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	default:
		return strings.Compare(
			strings.ToLower(record.String(a, field)),
			strings.ToLower(record.String(b, field)),
		)
	}
}

func timestamp(v join.ViewRecord, field string) int64 {
	t, ok := record.Time(v, field)
	if !ok {
		return 0
	}
	return t.Unix()
}

// Paginate slices one 1-based page out of the collection. Page validity is
// the Session's job; the slice math here only clamps to the collection
// bounds so it can never panic.
func Paginate(records []join.ViewRecord, page, pageSize int) Result {
	total := len(records)
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Result{
		Records:    records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
