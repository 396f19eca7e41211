package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

type TrackerService interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	ClearRoute(ctx context.Context) (int, error)
	ReapplyHeading(ctx context.Context) (bool, error)
}

type Tracker struct {
	tracker TrackerService
	l       logger.Logger
}

func NewTracker(tracker TrackerService, l logger.Logger) *Tracker {
	return &Tracker{
		tracker: tracker,
		l:       l,
	}
}

// GetState returns the vehicle state, address, trail and connection as the view sees them.
func (h *Tracker) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_state")

	snap, err := h.tracker.Snapshot(ctx)
	if err != nil {
		h.l.Error(ctx, "failed to read tracker state", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"state": snap}); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ClearRoute empties the drawn trail. The current position, if any, stays as its first point.
func (h *Tracker) ClearRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "clear_route")

	points, err := h.tracker.ClearRoute(ctx)
	if err != nil {
		h.l.Error(ctx, "failed to clear route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.l.Info(ctx, "route cleared", "points", points)

	if err := writeJSON(w, http.StatusOK, envelope{"points": points}); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ReapplyHeading re-issues the last bearing to the map.
func (h *Tracker) ReapplyHeading(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "reapply_heading")

	ok, err := h.tracker.ReapplyHeading(ctx)
	if err != nil {
		h.l.Error(ctx, "failed to reapply heading", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if !ok {
		errorResponse(w, http.StatusConflict, "no heading known yet")
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"applied": true}); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
