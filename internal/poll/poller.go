// Package poll periodically pulls authoritative records from an external
// source and reconciles them into the store. The poller owns nothing but its
// ticker; fetching is entirely the Fetcher's concern.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dappstate/internal/metrics"
	"dappstate/internal/store"
)

// Fetcher resolves the current authoritative record set, e.g. from a chain
// query or an indexer.
type Fetcher interface {
	Fetch(ctx context.Context) ([]store.Record, error)
}

type Poller struct {
	fetcher  Fetcher
	records  *store.Store
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewPoller(fetcher Fetcher, records *store.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		fetcher:  fetcher,
		records:  records,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the refresh loop. The first fetch happens immediately, so a
// cold store is seeded without waiting a full interval.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		slog.Info("poller started", "interval", p.interval)

		p.refresh(ctx)
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight cycle to finish.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	slog.Info("poller stopped")
}

// refresh reconciles one fetched record set: a cold store is bulk-loaded,
// otherwise known keys are confirmed with authoritative fields and unknown
// keys are created. Fetch errors are counted and logged, never fatal.
func (p *Poller) refresh(ctx context.Context) {
	fetched, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		metrics.PollErrorsTotal.Inc()
		slog.Warn("refresh fetch failed", "error", err)
		return
	}

	if p.records.Len() == 0 {
		p.records.Initialize(fetched)
		metrics.PollCyclesTotal.Inc()
		slog.Debug("store seeded", "records", len(fetched))
		return
	}

	for _, rec := range fetched {
		if _, ok := p.records.Get(rec.Key); ok {
			if err := p.records.Confirm(rec.Key, rec.Fields); err != nil {
				slog.Warn("confirm failed", "key", rec.Key, "error", err)
			}
			continue
		}
		if err := p.records.Create(rec); err != nil {
			slog.Warn("create failed", "key", rec.Key, "error", err)
		}
	}
	metrics.PollCyclesTotal.Inc()
}
