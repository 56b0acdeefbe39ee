package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

type mockHealthCheck struct {
	name string
	err  error
}

func (m *mockHealthCheck) Name() string { return m.name }
func (m *mockHealthCheck) Check(ctx context.Context) error { return m.err }

// slowHealthCheck blocks until its delay passes or ctx ends
type slowHealthCheck struct {
	name  string
	delay time.Duration
}

func (s *slowHealthCheck) Name() string { return s.name }

func (s *slowHealthCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestHealthChecker_AddRemove(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&mockHealthCheck{name: "b"})
	hc.AddCheck(&mockHealthCheck{name: "a"})
	hc.AddCheck(&mockHealthCheck{name: "a", err: errors.New("replaced")})

	if got := hc.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v, want [a b]", got)
	}
	if status := hc.CheckHealth(context.Background()); status.Checks["a"].Message != "replaced" {
		t.Errorf("check a was not replaced: %+v", status.Checks["a"])
	}

	hc.RemoveCheck("a")
	if got := hc.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Names() after remove = %v, want [b]", got)
	}
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus string
	}{
		{"no checks", nil, "healthy"},
		{"all healthy", []HealthCheck{&mockHealthCheck{name: "a"}, &mockHealthCheck{name: "b"}}, "healthy"},
		{"one failing", []HealthCheck{&mockHealthCheck{name: "a"}, &mockHealthCheck{name: "b", err: errors.New("down")}}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for _, c := range tt.checks {
				hc.AddCheck(c)
			}
			status := hc.CheckHealth(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d check results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&mockHealthCheck{name: "broken", err: errors.New("down")})

	rec := httptest.NewRecorder()
	hc.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, LivenessPath, nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of checks", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["status"] != "alive" {
		t.Errorf("body = %v (%v), want status alive", body, err)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"ready", nil, http.StatusOK},
		{"not ready", errors.New("session is not running"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.AddCheck(&mockHealthCheck{name: "session", err: tt.err})

			rec := httptest.NewRecorder()
			hc.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if tt.err != nil && status.Checks["session"].Message != tt.err.Error() {
				t.Errorf("message = %q, want %q", status.Checks["session"].Message, tt.err.Error())
			}
		})
	}
}

func TestReadinessHandlerTimeout(t *testing.T) {
	hc := NewHealthChecker()
	hc.timeout = 20 * time.Millisecond
	hc.AddCheck(&slowHealthCheck{name: "slow", delay: time.Second})

	start := time.Now()
	rec := httptest.NewRecorder()
	hc.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("readiness took %v, want the check cut off by the timeout", elapsed)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthChecker().Register(mux)

	for _, path := range []string{LivenessPath, ReadinessPath} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestSessionHealthCheck(t *testing.T) {
	running := true
	check := NewSessionHealthCheck(func() bool { return running })

	if check.Name() != "session" {
		t.Errorf("Name() = %q", check.Name())
	}
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Check() = %v while running", err)
	}
	running = false
	if err := check.Check(context.Background()); err == nil {
		t.Error("Check() = nil after the session ended")
	}
}

func TestLoopHealthCheck(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastTick time.Time
		now      time.Time
		wantErr  bool
	}{
		{"recent tick", base, base.Add(500 * time.Millisecond), false},
		{"stalled", base, base.Add(3 * time.Second), true},
		{"no tick yet, just started", time.Unix(0, 0), base.Add(time.Second), false},
		{"no tick yet, stalled at start", time.Unix(0, 0), base.Add(5 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewLoopHealthCheck(func() time.Time { return tt.lastTick }, 2*time.Second)
			check.started = base
			check.now = func() time.Time { return tt.now }

			err := check.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestListenerHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		running bool
		wantErr bool
	}{
		{"listening", "127.0.0.1:8080", true, false},
		{"not started", "", false, true},
		{"stopped", "127.0.0.1:8080", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewListenerHealthCheck(
				func() string { return tt.addr },
				func() bool { return tt.running },
			)
			if err := check.Check(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("Check() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
