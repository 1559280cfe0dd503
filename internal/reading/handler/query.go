package handler

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"housemonitor/internal/reading/domain"
	"housemonitor/internal/server/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardPage = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Querier answers one window query; the result is a *service.ClimateSeries or *service.MotionSeries.
type Querier interface {
	Query(ctx context.Context, c domain.Cursor) (interface{}, error)
}

// DashboardHandler serves GET /dashboard. With an action parameter it answers a window
// query as JSON; without one it renders the page shell for the chart front-end.
// Authentication is enforced by middleware.
type DashboardHandler struct {
	svc  Querier
	loc  *time.Location
	nowF func() time.Time
	log  *zap.Logger
}

// NewDashboardHandler returns a DashboardHandler. Query windows are read in loc.
func NewDashboardHandler(svc Querier, loc *time.Location, log *zap.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, loc: loc, nowF: time.Now, log: log}
}

// ServeHTTP implements http.Handler.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("action") {
		h.renderShell(w, r)
		return
	}
	cursor, err := domain.ParseCursor(q.Get("action"), q.Get("from"), q.Get("offset"), h.nowF(), h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid action"})
		return
	}
	series, err := h.svc.Query(r.Context(), cursor)
	if err != nil {
		h.log.Error("window query failed",
			zap.String("kind", string(cursor.Kind)),
			zap.Time("from", cursor.From),
			zap.Int("offset", cursor.Offset),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database query failed"})
		return
	}
	writeJSON(w, http.StatusOK, series)
}

type dashboardView struct {
	CSRFToken string
}

func (h *DashboardHandler) renderShell(w http.ResponseWriter, r *http.Request) {
	var view dashboardView
	if sess := middleware.SessionFrom(r.Context()); sess != nil {
		view.CSRFToken = sess.CSRFToken
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardPage.Execute(w, view); err != nil {
		h.log.Warn("render dashboard failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
