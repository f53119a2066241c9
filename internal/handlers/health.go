package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/venuequote/api/internal/platform/httpx"
	"github.com/venuequote/api/internal/services"
)

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"
	defaultCheckTimeout  = 2 * time.Second
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	CommitSHA string
	StartedAt time.Time
}

type readinessCheck struct {
	name    string
	checker services.ReadinessChecker
	timeout time.Duration
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	build  BuildInfo
	now    func() time.Time
	checks []readinessCheck
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthBuildInfo sets the build metadata reported by /healthz.
func WithHealthBuildInfo(info BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock overrides the clock used for uptime and timestamps.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if now != nil {
			h.now = now
		}
	}
}

// WithReadinessCheck registers a dependency that must be ready for /readyz to pass.
func WithReadinessCheck(name string, checker services.ReadinessChecker, timeout time.Duration) HealthOption {
	return func(h *HealthHandlers) {
		name = strings.TrimSpace(name)
		if name == "" || checker == nil {
			return
		}
		if timeout <= 0 {
			timeout = defaultCheckTimeout
		}
		h.checks = append(h.checks, readinessCheck{name: name, checker: checker, timeout: timeout})
	}
}

// NewHealthHandlers constructs probe handlers.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.now()
	}
	if h.build.Version == "" {
		h.build.Version = "dev"
	}
	return h
}

// Healthz reports liveness and build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.now().UTC()
	payload := map[string]any{
		"status":    healthStatusOK,
		"version":   h.build.Version,
		"uptime":    now.Sub(h.build.StartedAt).Round(time.Second).String(),
		"timestamp": now.Format(time.RFC3339),
	}
	if h.build.CommitSHA != "" {
		payload["commitSha"] = h.build.CommitSHA
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status  string                 `json:"status"`
	Checks  map[string]checkResult `json:"checks"`
	Details []string               `json:"details,omitempty"`
}

// Readyz runs every registered dependency check concurrently and returns 503 when any fails.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]checkResult, len(h.checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, check := range h.checks {
		wg.Add(1)
		go func(check readinessCheck) {
			defer wg.Done()
			result := h.run(r.Context(), check)
			mu.Lock()
			results[check.name] = result
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	resp := readinessResponse{Status: healthStatusOK, Checks: results}
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if result := results[name]; result.Status != healthStatusOK {
			resp.Status = healthStatusDegraded
			resp.Details = append(resp.Details, name+": "+result.Error)
		}
	}

	status := http.StatusOK
	if resp.Status != healthStatusOK {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}

func (h *HealthHandlers) run(ctx context.Context, check readinessCheck) checkResult {
	ctx, cancel := context.WithTimeout(ctx, check.timeout)
	defer cancel()

	started := h.now()
	err := check.checker.Ready(ctx)
	result := checkResult{Status: healthStatusOK, LatencyMS: h.now().Sub(started).Milliseconds()}
	if err != nil {
		result.Status = healthStatusDegraded
		result.Error = err.Error()
	}
	return result
}
