package journal

import (
	"log/slog"

	"dappstate/internal/store"
)

// Recorder bridges store change events into the journal. Confirmed and
// created records are journaled individually; a bulk initialize is journaled
// as a snapshot. Optimistic edits and rollbacks never touch the log.
type Recorder struct {
	journal *Journal
	records *store.Store
}

func NewRecorder(j *Journal, s *store.Store) *Recorder {
	return &Recorder{journal: j, records: s}
}

// OnChange is the callback to register with store.OnChange. Journal failures
// are logged, never propagated: persistence is best-effort and must not make
// a local state transition fail.
func (r *Recorder) OnChange(ev store.ChangeEvent) {
	switch ev.Kind {
	case store.ChangeInitialize:
		if err := r.journal.AppendSnapshot(r.records.All()); err != nil {
			slog.Error("journal snapshot failed", "error", err)
		}

	case store.ChangeCreate, store.ChangeConfirm:
		if err := r.journal.AppendRecord(ev.Record); err != nil {
			slog.Error("journal append failed", "key", ev.Key, "error", err)
		}

	default:
		// Speculative state is deliberately not persisted.
	}
}
