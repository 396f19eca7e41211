package tracker

import (
	"context"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/route"
)

// Snapshot returns the current state of the view.
func (e *Engine) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return call(ctx, e, func(ctx context.Context) models.Snapshot {
		snap := models.Snapshot{
			State:      e.rec.Snapshot(),
			Address:    e.address,
			Route:      e.trail.Points(),
			Style:      route.Style(e.motion()),
			Connection: e.conn.State(),
		}
		if b, ok := e.heading.Bearing(); ok {
			snap.Bearing = &b
		}
		return snap
	})
}

// ClearRoute empties the trail and re-seeds it with the marker position.
// Lookups still in flight are discarded when they return.
func (e *Engine) ClearRoute(ctx context.Context) (int, error) {
	return call(ctx, e, func(ctx context.Context) int {
		if pos, ok := e.rec.Position(); ok {
			e.trail.Clear(&pos)
		} else {
			e.trail.Clear(nil)
		}
		e.drawRoute(ctx)
		return e.trail.Len()
	})
}

// ReapplyHeading re-issues the current bearing. It reports false when no
// bearing is known yet.
func (e *Engine) ReapplyHeading(ctx context.Context) (bool, error) {
	type result struct {
		ok  bool
		err error
	}
	r, err := call(ctx, e, func(ctx context.Context) result {
		ok, err := e.heading.Reapply(ctx)
		return result{ok: ok, err: err}
	})
	if err != nil {
		return false, err
	}
	return r.ok, r.err
}
