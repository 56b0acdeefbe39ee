// pkg/network/ratelimit.go
package network

import (
	"net"
	"sync"
	"time"
)

// ConnectLimiter is a token bucket per remote host. Each host may open
// up to rate connections per window; tokens refill in proportion to the
// time elapsed.
type ConnectLimiter struct {
	rate   int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	hosts map[string]*bucket

	sweep *time.Ticker
	done  chan struct{}
	once  sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewConnectLimiter starts a limiter; Close stops its sweeper
func NewConnectLimiter(rate int, window time.Duration) *ConnectLimiter {
	cl := &ConnectLimiter{
		rate:   rate,
		window: window,
		now:    time.Now,
		hosts:  make(map[string]*bucket),
		sweep:  time.NewTicker(window),
		done:   make(chan struct{}),
	}
	go cl.sweepLoop()
	return cl
}

// Allow takes a token for the host part of remoteAddr
func (cl *ConnectLimiter) Allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	b, ok := cl.hosts[host]
	if !ok {
		b = &bucket{tokens: cl.rate, lastRefill: now}
		cl.hosts[host] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 && b.tokens < cl.rate {
		refill := int(float64(cl.rate) * float64(elapsed) / float64(cl.window))
		if refill > 0 {
			b.tokens = min(b.tokens+refill, cl.rate)
			b.lastRefill = now
		}
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// Hosts returns how many hosts are being tracked
func (cl *ConnectLimiter) Hosts() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.hosts)
}

func (cl *ConnectLimiter) sweepLoop() {
	for {
		select {
		case <-cl.sweep.C:
			cl.forgetIdle()
		case <-cl.done:
			return
		}
	}
}

// forgetIdle drops hosts that have not refilled for two windows
func (cl *ConnectLimiter) forgetIdle() {
	cutoff := cl.now().Add(-2 * cl.window)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	for host, b := range cl.hosts {
		if b.lastRefill.Before(cutoff) {
			delete(cl.hosts, host)
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (cl *ConnectLimiter) Close() {
	cl.once.Do(func() {
		cl.sweep.Stop()
		close(cl.done)
	})
}
