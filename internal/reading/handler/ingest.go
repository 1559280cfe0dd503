// Package handler serves the sensor ingestion endpoints and the dashboard window queries.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"housemonitor/internal/reading/domain"
)

// maxBodyBytes bounds an ingestion body; real payloads are under 200 bytes.
const maxBodyBytes = 64 << 10

// Ingester stores readings pushed by sensor nodes.
type Ingester interface {
	IngestClimate(ctx context.Context, r domain.ClimateReading) error
	IngestMotion(ctx context.Context, r domain.MotionReading) error
}

// IngestHandler serves POST /api/climate and POST /api/motion. The API key is checked
// by middleware before these handlers run. Every response body is empty.
type IngestHandler struct {
	svc Ingester
	loc *time.Location
	log *zap.Logger
}

// NewIngestHandler returns an IngestHandler. measured timestamps are read in loc.
func NewIngestHandler(svc Ingester, loc *time.Location, log *zap.Logger) *IngestHandler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestHandler{svc: svc, loc: loc, log: log}
}

// Climate handles /api/climate.
func (h *IngestHandler) Climate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	reading, err := domain.DecodeClimate(body, h.loc)
	if err != nil {
		h.log.Debug("rejected climate payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.finish(w, domain.KindClimate, h.svc.IngestClimate(r.Context(), reading))
}

// Motion handles /api/motion.
func (h *IngestHandler) Motion(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	reading, err := domain.DecodeMotion(body, h.loc)
	if err != nil {
		h.log.Debug("rejected motion payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.finish(w, domain.KindMotion, h.svc.IngestMotion(r.Context(), reading))
}

// readBody enforces POST and reads the bounded body, writing 405 or 400 itself on failure.
func (h *IngestHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Debug("ingestion body too large", zap.Int64("limit", tooLarge.Limit))
		}
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (h *IngestHandler) finish(w http.ResponseWriter, kind domain.Kind, err error) {
	if err != nil {
		h.log.Error("store reading failed", zap.String("kind", string(kind)), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
