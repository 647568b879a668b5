// Package netx models online/offline detection as an injected capability so
// components never consult a global and tests can force either state.
package netx

import (
	"context"
	"sync/atomic"
	"time"
)

// Checker reports whether the backend is currently reachable.
type Checker interface {
	IsOnline(ctx context.Context) bool
}

// Pinger is the reachability probe a Checker wraps, satisfied by the
// gateway client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker probes the backend and caches the last observed state so hot
// paths don't pay a network round-trip per call.
type PingChecker struct {
	pinger  Pinger
	timeout time.Duration
	online  atomic.Bool
}

// NewPingChecker wraps pinger. timeout bounds each probe; zero means 3s.
func NewPingChecker(pinger Pinger, timeout time.Duration) *PingChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PingChecker{pinger: pinger, timeout: timeout}
}

// Probe performs one reachability check, records the result, and reports
// the new state.
func (c *PingChecker) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	online := c.pinger.Ping(ctx) == nil
	c.online.Store(online)
	return online
}

// IsOnline returns the last probed state without touching the network.
// Callers that need freshness use Probe.
func (c *PingChecker) IsOnline(ctx context.Context) bool {
	return c.online.Load()
}

// StubChecker is a fixed-answer Checker for tests and for forcing offline
// operation.
type StubChecker struct {
	Online bool
}

func (s *StubChecker) IsOnline(ctx context.Context) bool {
	return s.Online
}
