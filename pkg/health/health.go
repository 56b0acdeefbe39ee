// Package health serves liveness and readiness probes for a headless
// session: the game loop must be running and ticking, and the spectator
// listener must be up.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Probe paths
const (
	LivenessPath  = "/health"
	ReadinessPath = "/ready"
)

// HealthCheck is one component's probe
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check returns an error when the component is unhealthy
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated readiness report
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of a single check
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker runs the registered checks
type HealthChecker struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	mu      sync.RWMutex
}

// NewHealthChecker creates an empty checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]HealthCheck),
		timeout: 5 * time.Second,
	}
}

// AddCheck registers check, replacing any check with the same name
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// Names returns the registered check names in order
func (hc *HealthChecker) Names() []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth runs every check. The result is healthy only if all pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}

// LivenessHandler answers 200 while the process can serve requests
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs the checks and answers 200 or 503
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Handler is what a mux needs to mount a probe
type Handler interface {
	Handle(pattern string, handler http.Handler)
}

// Register mounts both probes on mux
func (hc *HealthChecker) Register(mux Handler) {
	mux.Handle(LivenessPath, http.HandlerFunc(hc.LivenessHandler))
	mux.Handle(ReadinessPath, http.HandlerFunc(hc.ReadinessHandler))
}

// SessionHealthCheck fails once the session has terminated
type SessionHealthCheck struct {
	running func() bool
}

// NewSessionHealthCheck creates a check backed by running
func NewSessionHealthCheck(running func() bool) *SessionHealthCheck {
	return &SessionHealthCheck{running: running}
}

func (s *SessionHealthCheck) Name() string {
	return "session"
}

func (s *SessionHealthCheck) Check(ctx context.Context) error {
	if !s.running() {
		return fmt.Errorf("session is not running")
	}
	return nil
}

// LoopHealthCheck fails when no tick has completed for longer than the
// stall timeout. Before the first tick, the check's creation time counts
// as the last tick.
type LoopHealthCheck struct {
	lastTick func() time.Time
	timeout  time.Duration
	started  time.Time
	now      func() time.Time
}

// NewLoopHealthCheck creates a stall detector
func NewLoopHealthCheck(lastTick func() time.Time, timeout time.Duration) *LoopHealthCheck {
	return &LoopHealthCheck{
		lastTick: lastTick,
		timeout:  timeout,
		started:  time.Now(),
		now:      time.Now,
	}
}

func (l *LoopHealthCheck) Name() string {
	return "game_loop"
}

func (l *LoopHealthCheck) Check(ctx context.Context) error {
	last := l.lastTick()
	if last.UnixNano() <= 0 {
		last = l.started
	}
	if idle := l.now().Sub(last); idle > l.timeout {
		return fmt.Errorf("no tick for %s (limit %s)", idle.Round(time.Millisecond), l.timeout)
	}
	return nil
}

// ListenerHealthCheck fails while the spectator listener is down
type ListenerHealthCheck struct {
	listenerAddr func() string
	running      func() bool
}

// NewListenerHealthCheck creates a check from the server's bound address
// and running state.
func NewListenerHealthCheck(listenerAddr func() string, running func() bool) *ListenerHealthCheck {
	return &ListenerHealthCheck{listenerAddr: listenerAddr, running: running}
}

func (n *ListenerHealthCheck) Name() string {
	return "spectator_listener"
}

func (n *ListenerHealthCheck) Check(ctx context.Context) error {
	if n.listenerAddr() == "" || !n.running() {
		return fmt.Errorf("spectator listener is not active")
	}
	return nil
}
