package main

import (
	"fmt"
	"time"

	"dappstate/internal/cache"
	"dappstate/internal/configuration/properties"
	"dappstate/internal/journal"
	"dappstate/internal/metrics"
	"dappstate/internal/notify"
	"dappstate/internal/poll"
	"dappstate/internal/store"
)

// Services is the explicitly constructed object graph. Nothing in the tree
// reaches for a global; every component receives its collaborators here.
type Services struct {
	Records  *store.Store
	Queue    *notify.Queue
	Cache    *cache.MetadataCache
	Journal  *journal.Journal
	Recorder *journal.Recorder
	Poller   *poll.Poller
	Metrics  *metrics.Server
}

func NewServices(cfg *properties.Config, fetcher poll.Fetcher) (*Services, error) {
	records := store.New(cfg.Store.RequiredApprovals)

	var jnl *journal.Journal
	if cfg.Journal.Dir != "" {
		j, err := journal.Open(cfg.Journal.Dir, cfg.Journal.NoSync)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		jnl = j

		replayed, err := j.Replay()
		if err != nil {
			j.Close()
			return nil, fmt.Errorf("replay journal: %w", err)
		}
		if len(replayed) > 0 {
			records.Initialize(replayed)
		}
	}

	svcs := &Services{
		Records: records,
		Journal: jnl,
		Queue: notify.NewQueue(notify.Defaults{
			Timeout:      time.Duration(cfg.Notify.DefaultTimeout) * time.Millisecond,
			LoadingDelay: time.Duration(cfg.Notify.LoadingDelay) * time.Millisecond,
		}),
		Cache: cache.NewMetadataCache(
			cfg.Cache.MaxEntries,
			time.Duration(cfg.Cache.TTL)*time.Millisecond,
		),
		Metrics: metrics.NewServer(cfg.Metrics.Address),
	}

	// The recorder subscribes after replay so re-seeding the store does not
	// re-journal what was just read back.
	if jnl != nil {
		svcs.Recorder = journal.NewRecorder(jnl, records)
		records.OnChange(svcs.Recorder.OnChange)
	}

	if fetcher != nil {
		svcs.Poller = poll.NewPoller(
			fetcher,
			records,
			time.Duration(cfg.Poll.Interval)*time.Millisecond,
		)
	}

	return svcs, nil
}
