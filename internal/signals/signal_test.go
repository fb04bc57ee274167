// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package signals

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// ── Signal ──────────────────────────────────────────────────────────────────

func TestSignal_DeliversInSubscriptionOrder(t *testing.T) {
	s := NewSignal[int]()
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Emit(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSignal_DisposerRemovesOnlyItsCallback(t *testing.T) {
	s := NewSignal[int]()
	var a, b int

	disposeA := s.Subscribe(func(v int) { a += v })
	s.Subscribe(func(v int) { b += v })

	s.Emit(1)
	disposeA()
	disposeA() // повторный вызов ничего не делает
	s.Emit(2)

	assert.Equal(t, 1, a)
	assert.Equal(t, 3, b)
	assert.Equal(t, 1, s.Len())
}

func TestSignal_DisposeInsideCallback(t *testing.T) {
	s := NewSignal[int]()
	calls := 0

	var dispose Disposer
	dispose = s.Subscribe(func(int) {
		calls++
		dispose()
	})

	s.Emit(1)
	s.Emit(2)
	assert.Equal(t, 1, calls)
}

// ── Value ───────────────────────────────────────────────────────────────────

func TestValue_NotifiesOnlyOnChange(t *testing.T) {
	v := NewValue("")
	var seen []string
	v.Subscribe(func(s string) { seen = append(seen, s) })

	assert.True(t, v.Set("user-1"))
	assert.False(t, v.Set("user-1"))
	assert.True(t, v.Set(""))

	assert.Equal(t, []string{"user-1", ""}, seen)
	assert.Equal(t, "", v.Get())
}

func TestValue_ConcurrentSet(t *testing.T) {
	v := NewValue(0)
	var mu sync.Mutex
	notified := 0
	v.Subscribe(func(int) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v.Set(i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, notified)
}

// ── Connectivity / Identity / Preference ────────────────────────────────────

func TestConnectivity_RestoredFiresOnTransitionOnly(t *testing.T) {
	c := NewConnectivity(false)
	var order []string

	c.Subscribe(func(online bool) { order = append(order, "value") })
	dispose := c.OnRestored(func() { order = append(order, "restored") })

	c.SetOnline(true)
	c.SetOnline(true)
	c.SetOnline(false)
	c.SetOnline(true)

	assert.Equal(t, []string{"value", "restored", "value", "value", "restored"}, order)

	dispose()
	c.SetOnline(false)
	c.SetOnline(true)
	assert.Len(t, order, 7)
}

func TestIdentity_Present(t *testing.T) {
	id := NewIdentity()
	assert.False(t, id.Present())
	id.Set("user-1")
	assert.True(t, id.Present())
}

func TestPreference_Default(t *testing.T) {
	p := NewPreference(true)
	assert.True(t, p.Get())
	assert.True(t, p.Set(false))
}

// ── Prober ──────────────────────────────────────────────────────────────────

type stubPinger struct{ err error }

func (p *stubPinger) Ping(context.Context) error { return p.err }

func TestProber_DrivesConnectivity(t *testing.T) {
	pinger := &stubPinger{}
	conn := NewConnectivity(false)
	restored := 0
	conn.OnRestored(func() { restored++ })

	p := NewProber(pinger, conn, 0, logger.Nop())

	require.True(t, p.Probe(context.Background()))
	assert.True(t, conn.Get())
	assert.Equal(t, 1, restored)

	pinger.err = errors.New("connection refused")
	assert.False(t, p.Probe(context.Background()))
	assert.False(t, conn.Get())

	pinger.err = nil
	p.Probe(context.Background())
	assert.Equal(t, 2, restored)
}
