package store

import "fmt"

// deriveFields computes the speculative field changes for an action against
// the current record. The result is advisory only: Confirm overwrites it with
// authoritative data once the transaction resolves.
//
//   - approve: increments the approval count; status becomes ready when the
//     new count reaches the required-approvals threshold, pending otherwise.
//   - reject: status becomes rejected; the approval count is untouched.
func deriveFields(rec *Record, action Action, threshold int) (map[string]any, error) {
	switch action {
	case ActionApprove:
		approvals := fieldInt(rec.Fields, FieldApprovals) + 1
		status := StatusPending
		if approvals >= threshold {
			status = StatusReady
		}
		return map[string]any{
			FieldApprovals: approvals,
			FieldStatus:    status,
		}, nil

	case ActionReject:
		return map[string]any{
			FieldStatus: StatusRejected,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// fieldInt reads a numeric field, tolerating the integer widths a JSON
// round-trip can produce. Missing or non-numeric fields count as zero.
func fieldInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
