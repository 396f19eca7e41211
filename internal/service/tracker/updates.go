package tracker

import (
	"context"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/dispatcher"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/geocode"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/reconciler"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/route"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

// marker icon depends on these
const iconFields = reconciler.ChangedPosition | reconciler.ChangedSpeed | reconciler.ChangedIgnition |
	reconciler.ChangedConnection | reconciler.ChangedHistorical

// HandleLocation is called by the dispatcher on the loop goroutine.
func (e *Engine) HandleLocation(ctx context.Context, u dispatcher.LocationUpdate) {
	ctx = wrap.WithAction(ctx, types.ActionApplyLocation)

	s := u.Sample
	if s.Timestamp == nil {
		s.Timestamp = u.Timestamp
	}

	change := e.rec.ApplyLocation(s)
	e.log.Debug(ctx, "location applied", "valid", s.Valid(), "changed", change.String())

	e.apply(ctx, change)

	// rotation follows every valid course, whether or not it changed
	if s.Valid() && s.Course != nil {
		e.rotate(ctx, *s.Course)
	}
}

// HandleStatus is called by the dispatcher on the loop goroutine.
func (e *Engine) HandleStatus(ctx context.Context, u dispatcher.StatusUpdate) {
	ctx = wrap.WithAction(ctx, types.ActionApplyStatus)

	change := e.rec.ApplyStatus(u.Sample)
	e.log.Debug(ctx, "status applied", "changed", change.String())

	e.apply(ctx, change)
}

// apply fans a reconciled change out to the trail, the address and the map.
func (e *Engine) apply(ctx context.Context, change reconciler.Change) {
	if change.Empty() {
		return
	}

	pos, hasPos := e.rec.Position()

	if hasPos && change.Has(iconFields) {
		e.rendered(ctx, "set_marker", e.render.SetMarkerPosition(ctx, pos, e.icon()))
	}

	if hasPos && change.Has(reconciler.ChangedPosition) {
		e.rendered(ctx, "pan_to", e.render.PanTo(ctx, pos))
		e.addPoint(ctx, pos)
		e.requestAddress(ctx, true)
	}

	if change.Has(reconciler.ChangedSpeed) && !change.Has(reconciler.ChangedPosition) {
		// style depends on motion
		e.drawRoute(ctx)
	}

	e.drawInfo(ctx)
}

func (e *Engine) addPoint(ctx context.Context, pos models.Coordinate) {
	if seg := e.trail.AddPoint(pos); seg != nil {
		// drawn once the lookup completes
		e.lookup(ctx, seg)
		return
	}
	e.drawRoute(ctx)
}

// lookup snaps seg off the loop; the result comes back through Complete.
func (e *Engine) lookup(ctx context.Context, seg *route.Segment) {
	e.async(ctx, func(ctx context.Context) func(context.Context) {
		path, err := e.trail.Lookup(ctx, seg)
		return func(ctx context.Context) {
			next := e.trail.Complete(seg, path, err)
			e.drawRoute(ctx)
			if next != nil {
				e.lookup(ctx, next)
			}
		}
	})
}

func (e *Engine) rotate(ctx context.Context, course float64) {
	if _, err := e.heading.RotateTo(ctx, course); err != nil {
		e.rendered(ctx, "rotate", err)
	}
}

// requestAddress starts a reverse lookup for the current position. moved
// marks a position change: it queues behind a lookup in flight, while a
// periodic refresh is simply skipped.
func (e *Engine) requestAddress(ctx context.Context, moved bool) {
	pos, ok := e.rec.Position()
	if !ok {
		return
	}

	if e.addr.inFlight {
		if moved {
			e.addr.dirty = true
		}
		return
	}

	e.addr.inFlight = true
	e.addr.dirty = false
	e.addr.seq++
	seq := e.addr.seq

	if e.address.Text == "" || moved {
		e.address = geocode.Placeholder()
	} else {
		e.address.State = types.AddressResolving
	}
	e.drawInfo(ctx)

	e.async(ctx, func(ctx context.Context) func(context.Context) {
		addr := e.geocoder.Resolve(ctx, pos)
		return func(ctx context.Context) {
			e.addressResolved(ctx, seq, addr)
		}
	})
}

func (e *Engine) addressResolved(ctx context.Context, seq uint64, addr models.Address) {
	if seq != e.addr.seq {
		return
	}
	e.addr.inFlight = false
	e.address = addr

	e.log.Debug(wrap.WithAction(ctx, types.ActionGeocode), "address resolved",
		"state", string(addr.State),
		"provider", addr.Provider,
	)

	if e.addr.dirty {
		// moved while resolving: keep the stale text until the new lookup lands
		e.requestAddress(ctx, false)
		return
	}
	e.drawInfo(ctx)
}

func (e *Engine) onConnEvent(ctx context.Context, ev types.ConnEvent) {
	e.log.Info(wrap.WithAction(ctx, types.ActionPushConnect), "push connection state", "event", string(ev))
	e.rendered(ctx, "connection_state", e.render.ConnectionState(ctx, ev))
}

// drawAll issues the full set of map commands for the current state.
func (e *Engine) drawAll(ctx context.Context) {
	pos, ok := e.rec.Position()
	if ok {
		e.rendered(ctx, "set_marker", e.render.SetMarkerPosition(ctx, pos, e.icon()))
		e.rendered(ctx, "pan_to", e.render.PanTo(ctx, pos))
	}
	e.drawRoute(ctx)
	if course, ok := e.rec.Course(); ok {
		e.rotate(ctx, course)
	}
	e.drawInfo(ctx)
}

func (e *Engine) drawRoute(ctx context.Context) {
	e.rendered(ctx, "set_polyline", e.render.SetPolyline(ctx, e.trail.Points(), route.Style(e.motion())))
}

func (e *Engine) drawInfo(ctx context.Context) {
	e.rendered(ctx, "update_info", e.render.UpdateInfo(ctx, models.InfoPanel{
		State:   e.rec.Snapshot(),
		Address: e.address,
		Motion:  e.motion(),
	}))
}

func (e *Engine) icon() models.IconState {
	st := e.rec.Snapshot()

	icon := models.IconState{
		Category:   st.Vehicle.Category,
		Motion:     e.motion(),
		Historical: st.Historical,
	}
	if st.Status.Ignition != nil {
		icon.Ignition = *st.Status.Ignition
	}
	if st.Status.Connection != nil {
		icon.Connection = *st.Status.Connection
	}
	return icon
}

func (e *Engine) motion() types.Motion {
	return e.rec.Motion(e.cfg.MovingSpeed)
}

// rendered logs a failed map call. Rendering errors never stop the loop.
func (e *Engine) rendered(ctx context.Context, call string, err error) {
	if err != nil {
		e.log.Warn(wrap.WithAction(ctx, types.ActionRender), "map command failed", "command", call, "error", err.Error())
	}
}
