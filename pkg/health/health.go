// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Registered checks are polled by a single background loop. A check flips to
// unhealthy only after failing consecutively a few times, so a single slow
// database ping does not take the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

type probeKind int

const (
	kindLiveness probeKind = iota
	kindReadiness
)

// failLimit is how many consecutive failures flip a probe to unhealthy.
const failLimit = 3

// probe is the runtime state of a single registered check.
//
// fails is touched only by the poll loop. ok and lastErr are also read by
// HTTP handlers, hence the atomics.
type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	fn      CheckFunc

	fails   int
	ok      atomic.Bool
	lastErr atomic.Pointer[error]
}

// exec runs the check once and updates the probe state. Called only from the
// poll loop.
func (p *probe) exec(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.fn(ctx)
	p.lastErr.Store(&err)

	if err != nil {
		p.fails++
		if p.fails >= failLimit {
			p.ok.Store(false)
		}
		return
	}
	p.fails = 0
	p.ok.Store(true)
}

func (p *probe) failure() (string, bool) {
	if p.ok.Load() {
		return "", false
	}
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error(), true
	}
	return "check is unhealthy", true
}

// Health aggregates liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Health in the not-ready state. Call SetReady(true) once
// initialization finishes.
func New() *Health {
	return &Health{}
}

func (h *Health) add(kind probeKind, name string, timeout time.Duration, fn CheckFunc) {
	p := &probe{name: name, kind: kind, timeout: timeout, fn: fn}
	p.ok.Store(true) // healthy until the poll loop says otherwise

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// AddLivenessCheck registers a check that decides whether the process itself
// is functioning, e.g. a goroutine leak detector.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(kindLiveness, name, timeout, fn)
}

// AddReadinessCheck registers a check that decides whether the service can
// take traffic, e.g. database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(kindReadiness, name, timeout, fn)
}

// Start launches the poll loop. All checks run once immediately and then at
// every interval until the context is cancelled or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		h.poll(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.poll(ctx)
			}
		}
	}()
}

// poll runs every registered probe once, sequentially.
func (h *Health) poll(ctx context.Context) {
	h.mu.RLock()
	probes := h.probes
	h.mu.RUnlock()

	for _, p := range probes {
		if ctx.Err() != nil {
			return
		}
		p.exec(ctx)
	}
}

// Stop cancels the poll loop. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set true after startup completes
// and false at the beginning of graceful shutdown so load balancers drain the
// instance before connections close.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness check
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	return len(h.failures(kindReadiness)) == 0
}

func (h *Health) failures(kind probeKind) map[string]string {
	h.mu.RLock()
	probes := h.probes
	h.mu.RUnlock()

	out := make(map[string]string)
	for _, p := range probes {
		if p.kind != kind {
			continue
		}
		if msg, bad := p.failure(); bad {
			out[p.name] = msg
		}
	}
	return out
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the /livez probe: 200 while liveness checks pass, 503
// with per-check messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(kindLiveness))
}

// ReadyEndpoint serves the /readyz probe: 200 only when the service is marked
// ready and all readiness checks pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(kindReadiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
