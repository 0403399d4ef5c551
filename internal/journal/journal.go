// Package journal persists confirmed record state in an append-only log so a
// restarted session resumes where the last one left off. Speculative edits
// are never written; only authoritative state survives a restart.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"dappstate/internal/metrics"
	"dappstate/internal/store"

	"github.com/google/uuid"
	"github.com/tidwall/wal"
)

// Entry framing: a one-byte record type followed by a JSON payload.
const (
	recordTypeSession  byte = 1
	recordTypeRecord   byte = 2
	recordTypeSnapshot byte = 3
)

type persistedRecord struct {
	Key         string         `json:"key"`
	Fields      map[string]any `json:"fields"`
	LastUpdated time.Time      `json:"last_updated"`
}

type Journal struct {
	mu      sync.Mutex
	log     *wal.Log
	nextIdx uint64
	session string
}

// Open opens (or creates) the journal under dir. A fresh log gets a session
// header as its first entry.
func Open(dir string, noSync bool) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	opts := *wal.DefaultOptions
	opts.NoSync = noSync
	log, err := wal.Open(dir, &opts)
	if err != nil {
		return nil, fmt.Errorf("wal.Open: %w", err)
	}

	last, err := log.LastIndex()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("wal last index: %w", err)
	}

	j := &Journal{log: log, nextIdx: last + 1}

	if last == 0 {
		j.session = uuid.NewString()
		if err := j.append(recordTypeSession, []byte(j.session)); err != nil {
			log.Close()
			return nil, err
		}
	}

	return j, nil
}

// Session returns the id written when this log was first created. Empty
// until Replay has run on a reopened log.
func (j *Journal) Session() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.session
}

// AppendRecord journals one confirmed record state.
func (j *Journal) AppendRecord(rec store.Record) error {
	data, err := json.Marshal(persistedRecord{
		Key:         rec.Key,
		Fields:      rec.Fields,
		LastUpdated: rec.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", rec.Key, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	metrics.JournalAppendsTotal.WithLabelValues("record").Inc()
	return j.append(recordTypeRecord, data)
}

// AppendSnapshot journals the full record set and truncates everything
// before it, so replay cost stays proportional to live state.
func (j *Journal) AppendSnapshot(recs []store.Record) error {
	prs := make([]persistedRecord, 0, len(recs))
	for _, rec := range recs {
		prs = append(prs, persistedRecord{
			Key:         rec.Key,
			Fields:      rec.Fields,
			LastUpdated: rec.LastUpdated,
		})
	}
	data, err := json.Marshal(prs)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	snapIdx := j.nextIdx
	if err := j.append(recordTypeSnapshot, data); err != nil {
		return err
	}
	metrics.JournalAppendsTotal.WithLabelValues("snapshot").Inc()

	if err := j.log.TruncateFront(snapIdx); err != nil {
		return fmt.Errorf("wal truncate front %d: %w", snapIdx, err)
	}
	return nil
}

// Replay reads the whole log and reconstructs the confirmed record set,
// suitable for seeding store.Initialize. A snapshot entry resets the set;
// record entries upsert into it.
func (j *Journal) Replay() ([]store.Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	first, err := j.log.FirstIndex()
	if err != nil {
		return nil, fmt.Errorf("wal first index: %w", err)
	}
	last, err := j.log.LastIndex()
	if err != nil {
		return nil, fmt.Errorf("wal last index: %w", err)
	}

	byKey := make(map[string]store.Record)
	count := 0

	for idx := first; idx > 0 && idx <= last; idx++ {
		data, err := j.log.Read(idx)
		if err != nil {
			return nil, fmt.Errorf("wal read %d: %w", idx, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("wal entry %d: empty", idx)
		}

		payload := data[1:]
		switch data[0] {
		case recordTypeSession:
			j.session = string(payload)

		case recordTypeRecord:
			var pr persistedRecord
			if err := json.Unmarshal(payload, &pr); err != nil {
				return nil, fmt.Errorf("wal entry %d: %w", idx, err)
			}
			byKey[pr.Key] = store.Record{Key: pr.Key, Fields: pr.Fields, LastUpdated: pr.LastUpdated}

		case recordTypeSnapshot:
			var prs []persistedRecord
			if err := json.Unmarshal(payload, &prs); err != nil {
				return nil, fmt.Errorf("wal entry %d: %w", idx, err)
			}
			byKey = make(map[string]store.Record, len(prs))
			for _, pr := range prs {
				byKey[pr.Key] = store.Record{Key: pr.Key, Fields: pr.Fields, LastUpdated: pr.LastUpdated}
			}

		default:
			return nil, fmt.Errorf("wal entry %d: unknown record type %d", idx, data[0])
		}
		count++
	}

	metrics.JournalReplayEntries.Set(float64(count))

	out := make([]store.Record, 0, len(byKey))
	for _, rec := range byKey {
		out = append(out, rec)
	}
	return out, nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.log.Close()
}

// append writes one framed entry. Callers hold the lock.
func (j *Journal) append(typ byte, payload []byte) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, typ)
	buf = append(buf, payload...)

	if err := j.log.Write(j.nextIdx, buf); err != nil {
		return fmt.Errorf("wal write %d: %w", j.nextIdx, err)
	}
	j.nextIdx++
	return nil
}
