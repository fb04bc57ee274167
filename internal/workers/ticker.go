// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// tickerWorker calls run on every tick of interval, and once at start when
// immediate is set.
type tickerWorker struct {
	interval  time.Duration
	immediate bool
	run       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (j *tickerWorker) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		if j.immediate {
			j.run(jobCtx)
		}

		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.run(jobCtx)
			}
		}
	}()
}

func (j *tickerWorker) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// NewSyncWorker calls syncer.Sync every interval as an extra retry path for
// queued changes. Failures are logged at debug level: the orchestrator
// already logs remote failures and an unavailable sync is routine offline.
func NewSyncWorker(syncer Syncer, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &tickerWorker{
		interval: interval,
		run: func(ctx context.Context) {
			if err := syncer.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Str("func", "syncWorker.run").Msg("periodic sync skipped")
			}
		},
	}
}

// NewProbeWorker probes connectivity right away and then every interval.
func NewProbeWorker(prober Prober, interval time.Duration) Worker {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &tickerWorker{
		interval:  interval,
		immediate: true,
		run:       func(ctx context.Context) { prober.Probe(ctx) },
	}
}
