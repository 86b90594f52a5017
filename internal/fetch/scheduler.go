package fetch

import (
	"context"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/index"
	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/courtside-lab/project-courtside/internal/resource"
)

// Diagnostic records one recovered, non-fatal fetch failure. The
// presentation layer may surface the list; nothing in this layer throws
// past its boundary for these.
type Diagnostic struct {
	Resource string    `json:"resource"`
	Key      string    `json:"key,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

func diagnose(resourcePath, key string, err error) Diagnostic {
	return Diagnostic{
		Resource: resourcePath,
		Key:      key,
		Message:  err.Error(),
		At:       time.Now().UTC(),
	}
}

// ForeignKeys collects the values of one semantic foreign-key field across
// a primary collection, in order, duplicates and blanks included (the
// index diff deduplicates).
func ForeignKeys(records []record.RawRecord, semantic string) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, record.ID(r, semantic))
	}
	return keys
}

// ResolveMissing fetches the referenced records not yet present in the
// index, one request per missing key, and merges the successes. A failed
// item is recorded and skipped — it never aborts the batch — and nothing
// is retried. Overlapping resolutions of the same key overwrite
// idempotently; there is deliberately no in-flight request tracker.
func ResolveMissing(ctx context.Context, f resource.Fetcher, ix index.Index, endpoint string, keys []string) (int, []Diagnostic) {
	var (
		added int
		diags []Diagnostic
	)
	for _, key := range ix.Missing(keys) {
		r, err := f.Record(ctx, endpoint, key)
		if err != nil {
			diags = append(diags, diagnose(endpoint, key, err))
			continue
		}
		ix.Add(key, r)
		added++
	}
	return added, diags
}
