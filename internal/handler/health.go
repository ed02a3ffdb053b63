// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/solarhub/solar-admin/internal/scheduler"
	"github.com/solarhub/solar-admin/internal/version"
)

// Health check states.
const (
	healthHealthy   = "healthy"
	healthUnhealthy = "unhealthy"
)

// WorkflowCounter reports how many edit workflows are in memory.
type WorkflowCounter interface {
	Len() int
}

// JobLister reports the scheduled maintenance jobs.
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	sessions  SessionAuthenticator
	workflows WorkflowCounter
	jobs      JobLister
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. sessions, workflows and
// jobs may be nil.
func NewHealthHandler(db *sql.DB, sessions SessionAuthenticator, workflows WorkflowCounter, jobs JobLister, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sessions:  sessions,
		workflows: workflows,
		jobs:      jobs,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the full response, shown to signed-in admins only.
type HealthStatus struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   string              `json:"version"`
	Checks    map[string]Check    `json:"checks"`
	Workflows int                 `json:"workflows"`
	Jobs      []scheduler.JobInfo `json:"jobs,omitempty"`
	System    *SystemInfo         `json:"system,omitempty"`
}

// Check is a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains runtime information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())

	status := healthHealthy
	code := http.StatusOK
	if dbCheck.Status != healthHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if !h.isAdmin(r) {
		writeJSON(w, code, HealthStatusPublic{Status: status})
		return
	}

	resp := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Label(),
		Checks:    map[string]Check{"database": dbCheck},
	}
	if h.workflows != nil {
		resp.Workflows = h.workflows.Len()
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Jobs()
	}
	if r.URL.Query().Get("verbose") == "true" {
		resp.System = systemInfo()
	}
	writeJSON(w, code, resp)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checkDatabase(r.Context()).Status != healthHealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// isAdmin reports whether the request carries an admin session. Returns
// false without panicking when session data is not loaded.
func (h *HealthHandler) isAdmin(r *http.Request) (admin bool) {
	if h.sessions == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			admin = false
		}
	}()
	st := h.sessions.Restore(r.Context())
	return st.Authenticated() && st.User.IsAdmin()
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: healthHealthy, Message: "No database"}
	}
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)
	if err != nil {
		return Check{Status: healthUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: healthHealthy, Message: "Connected", Latency: latency.String()}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
