package record

// RawRecord is an untyped record as returned by one resource endpoint.
// No fixed schema is guaranteed; the same logical field may appear under
// several names depending on which backend service produced it.
type RawRecord map[string]any

// Clone returns a shallow copy of the record. Values are shared; the
// top-level map is independent, which is all the join overlay needs.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the record carries a present, non-nil value under
// the concrete key (no variant probing).
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
