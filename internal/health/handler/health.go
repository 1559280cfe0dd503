// Package handler serves liveness and readiness probes.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

// checkTimeout bounds each readiness dependency check.
const checkTimeout = 2 * time.Second

// Pinger is implemented by *sql.DB and anything else with a context-aware ping.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckFunc reports whether one dependency is reachable.
type CheckFunc func(ctx context.Context) error

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return p.PingContext
}

// Handler answers /healthz unconditionally and /readyz by running every registered check.
type Handler struct {
	checks map[string]CheckFunc
	log    *zap.Logger
}

// NewHandler returns a Handler with no checks; readiness then always succeeds.
func NewHandler(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{checks: make(map[string]CheckFunc), log: log}
}

// AddCheck registers a named readiness check. A nil check is ignored.
func (h *Handler) AddCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	h.checks[name] = check
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Live handles GET /healthz.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, status{Status: "ok"})
}

// Ready handles GET /readyz: 200 when every check passes, otherwise 503 listing the failures.
// Error details go to the log only.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := status{Status: "ok", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			h.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			res.Checks[name] = "unavailable"
			res.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	writeStatus(w, code, res)
}

func writeStatus(w http.ResponseWriter, code int, s status) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(s)
}
