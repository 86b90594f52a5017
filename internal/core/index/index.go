// Package index builds id-keyed lookup indexes over raw resource
// collections. An index is rebuilt wholesale on each refresh and only ever
// grows within a refresh (incremental foreign-key resolution); it is never
// merged destructively across refreshes.
package index

import (
	"github.com/courtside-lab/project-courtside/internal/core/record"
)

// Index maps a record identifier to its raw record for one resource type.
type Index map[string]record.RawRecord

// Build indexes a collection by the given semantic identifier field.
// Records without a resolvable identifier cannot be joined against and are
// silently dropped. O(n) in the input; lookups are O(1) thereafter.
func Build(records []record.RawRecord, idField string) Index {
	ix := make(Index, len(records))
	for _, r := range records {
		id := record.ID(r, idField)
		if id == "" {
			continue
		}
		ix[id] = r
	}
	return ix
}

// Lookup returns the record for an identifier.
func (ix Index) Lookup(id string) (record.RawRecord, bool) {
	r, ok := ix[id]
	return r, ok
}

// Add inserts a record fetched for a missing foreign key. Overwrite is
// idempotent: overlapping resolutions of the same key are tolerated.
func (ix Index) Add(id string, r record.RawRecord) {
	if id == "" {
		return
	}
	ix[id] = r
}

// Missing returns the subset of keys not yet present, deduplicated,
// in first-seen order. Empty keys are skipped.
func (ix Index) Missing(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := ix[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
