// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// orderWorker records start and stop events into a shared slice.
type orderWorker struct {
	id    int
	order *[]string
}

func (o *orderWorker) Start(context.Context) { *o.order = append(*o.order, "start", string(rune('0'+o.id))) }
func (o *orderWorker) Stop()                 { *o.order = append(*o.order, "stop", string(rune('0'+o.id))) }

// spySyncer считает вызовы Sync.
type spySyncer struct {
	calls atomic.Int64
	err   error
}

func (s *spySyncer) Sync(context.Context) error {
	s.calls.Add(1)
	return s.err
}

type spyProber struct{ calls atomic.Int64 }

func (p *spyProber) Probe(context.Context) bool {
	p.calls.Add(1)
	return true
}

// ── Workers ─────────────────────────────────────────────────────────────────

func TestWorkers_StartInOrderStopInReverse(t *testing.T) {
	var order []string
	ws := NewWorkers(&orderWorker{id: 1, order: &order}, &orderWorker{id: 2, order: &order})

	ws.Start(context.Background())
	ws.Stop()

	assert.Equal(t, []string{"start", "1", "start", "2", "stop", "2", "stop", "1"}, order)
}

func TestWorkers_Empty(t *testing.T) {
	ws := NewWorkers()

	// не должно паниковать на пустом списке
	ws.Start(context.Background())
	ws.Stop()
}

// ── sync worker ─────────────────────────────────────────────────────────────

func TestSyncWorker_CallsSyncOnTicks(t *testing.T) {
	spy := &spySyncer{err: errors.New("offline")}
	w := NewSyncWorker(spy, 10*time.Millisecond, logger.Nop())

	// Интервал 10ms: за 55ms должно быть ~5 тиков
	w.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	w.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "Sync должен быть вызван несколько раз, вызвано: %d", got)
}

func TestSyncWorker_StopStopsGoroutine(t *testing.T) {
	spy := &spySyncer{}
	w := NewSyncWorker(spy, 10*time.Millisecond, logger.Nop())

	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, spy.calls.Load(), "после Stop новых вызовов быть не должно")
}

func TestSyncWorker_StopBeforeStartAndTwice(t *testing.T) {
	w := NewSyncWorker(&spySyncer{}, 0, logger.Nop())

	assert.NotPanics(t, func() { w.Stop() })
	w.Start(context.Background())
	w.Stop()
	assert.NotPanics(t, func() { w.Stop() })
}

func TestSyncWorker_RestartReplacesRunningJob(t *testing.T) {
	spy := &spySyncer{}
	w := NewSyncWorker(spy, time.Hour, logger.Nop())

	w.Start(context.Background())
	w.Start(context.Background())
	w.Stop()

	assert.Zero(t, spy.calls.Load())
}

// ── probe worker ────────────────────────────────────────────────────────────

func TestProbeWorker_ProbesImmediately(t *testing.T) {
	spy := &spyProber{}
	w := NewProbeWorker(spy, time.Hour)

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestProbeWorker_StopsWithParentContext(t *testing.T) {
	spy := &spyProber{}
	w := NewProbeWorker(spy, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	calls := spy.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, spy.calls.Load())
	w.Stop()
}
