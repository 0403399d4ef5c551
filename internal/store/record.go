package store

import "time"

// Well-known field keys used by the status derivation.
const (
	FieldApprovals = "approvals"
	FieldStatus    = "status"
)

// Statuses derived for proposal records. Advisory while a speculative edit is
// outstanding; authoritative data from Confirm overwrites them.
const (
	StatusPending  = "pending"
	StatusReady    = "ready"
	StatusRejected = "rejected"
)

// Record is a domain entity tracked by the store, e.g. a governance proposal.
// Fields carries the arbitrary domain payload; callers never mutate a Record
// in place — every accessor hands out a copy.
type Record struct {
	Key         string
	Fields      map[string]any
	LastUpdated time.Time
	Optimistic  bool
}

func (r Record) clone() Record {
	out := r
	out.Fields = copyFields(r.Fields)
	return out
}

// copyFields deep-copies the nested map/slice structure a record payload can
// hold so a snapshot is immune to later edits.
func copyFields(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
