// Package join denormalizes a primary record and its related records into
// one view record for display. Join is a pure function of its inputs:
// identical inputs always produce field-for-field identical output.
package join

import (
	"github.com/courtside-lab/project-courtside/internal/core/record"
)

// ViewRecord is the denormalized output handed to aggregation and query.
// It shares the raw record shape so field access keeps routing through the
// resolver.
type ViewRecord = record.RawRecord

// Unknown is the sentinel substituted when a foreign key cannot be resolved
// to a related record. Derived display fields are always set to a string,
// never nil, so search and sort treat partially loaded data uniformly.
const Unknown = "Unknown"

// Derived field keys written by Join. Distinct from any resource field, so
// they never collide with primary data.
const (
	FieldStadiumName  = "resolvedStadiumName"
	FieldLocationName = "resolvedLocationName"
	FieldTypeName     = "resolvedTypeName"
	FieldOwnerName    = "resolvedOwnerName"

	FieldStadiumID  = "resolvedStadiumId"
	FieldLocationID = "resolvedLocationId"
	FieldTypeID     = "resolvedTypeId"
	FieldUserID     = "resolvedUserId"
)

// Related carries the 0..N related records for one primary record.
// A nil entry means the relation was not found (or not requested).
type Related struct {
	Detail   record.RawRecord
	Stadium  record.RawRecord
	Location record.RawRecord
	Type     record.RawRecord
	User     record.RawRecord
}

// Join merges a primary record with its related records.
//
// The primary record's fields are taken verbatim and never overwritten:
// a detail record fills gaps only (status, dates and identifiers stay
// primary-sourced), and stadium/location/type/user data is attached under
// the derived resolved* keys rather than merged.
func Join(primary record.RawRecord, rel Related) ViewRecord {
	acc := primary.Clone()

	if rel.Detail != nil {
		for k, v := range rel.Detail {
			if v == nil {
				continue
			}
			if !acc.Has(k) {
				acc[k] = v
			}
		}
	}

	// Effective foreign keys: the accumulator first (a detail record may
	// carry the stadium id the booking itself lacks), the primary second.
	acc[FieldStadiumID] = effectiveKey(acc, primary, record.SemStadiumID)
	acc[FieldLocationID] = effectiveKey(acc, primary, record.SemLocationID)
	acc[FieldTypeID] = effectiveKey(acc, primary, record.SemTypeID)
	acc[FieldUserID] = effectiveKey(acc, primary, record.SemUserID)

	acc[FieldStadiumName] = DisplayName(rel.Stadium)
	acc[FieldLocationName] = locationName(rel.Location)
	acc[FieldTypeName] = DisplayName(rel.Type)
	acc[FieldOwnerName] = ownerName(rel.User)

	return acc
}

func effectiveKey(acc, primary record.RawRecord, semantic string) string {
	if id := record.ID(acc, semantic); id != "" {
		return id
	}
	return record.ID(primary, semantic)
}

// DisplayName is the fixed display-name rule for a related record: its
// resolved name, or the Unknown sentinel when the record is absent or
// carries none of the name variants.
func DisplayName(r record.RawRecord) string {
	if r == nil {
		return Unknown
	}
	if name := record.String(r, record.SemName); name != "" {
		return name
	}
	return Unknown
}

// locationName prefers the location's name and falls back to its address,
// which is how locations without a label are shown.
func locationName(r record.RawRecord) string {
	if r == nil {
		return Unknown
	}
	if name := record.String(r, record.SemName); name != "" {
		return name
	}
	if addr := record.String(r, record.SemAddress); addr != "" {
		return addr
	}
	return Unknown
}

// ownerName prefers the user's name and falls back to the email, which is
// always present on accounts that never filled in a profile.
func ownerName(r record.RawRecord) string {
	if r == nil {
		return Unknown
	}
	if name := record.String(r, record.SemName); name != "" {
		return name
	}
	if email := record.String(r, record.SemEmail); email != "" {
		return email
	}
	return Unknown
}
