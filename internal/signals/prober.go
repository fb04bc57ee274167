// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package signals

import (
	"context"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// Pinger checks that the remote document store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober drives a [Connectivity] signal from health checks of the remote
// store.
type Prober struct {
	pinger  Pinger
	conn    *Connectivity
	timeout time.Duration
	logger  *logger.Logger
}

// NewProber returns a prober. A non-positive timeout leaves the deadline to
// the pinger.
func NewProber(pinger Pinger, conn *Connectivity, timeout time.Duration, logger *logger.Logger) *Prober {
	return &Prober{pinger: pinger, conn: conn, timeout: timeout, logger: logger}
}

// Probe pings once, updates the signal and returns the observed state.
func (p *Prober) Probe(ctx context.Context) bool {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.pinger.Ping(ctx)
	online := err == nil
	was := p.conn.Get()

	switch {
	case was && !online:
		p.logger.Warn().Err(err).Str("func", "*Prober.Probe").Msg("remote store unreachable, going offline")
	case !was && online:
		p.logger.Info().Str("func", "*Prober.Probe").Msg("connectivity restored")
	}

	p.conn.SetOnline(online)
	return online
}
