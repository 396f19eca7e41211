// Package route keeps the drawn trail of the tracked vehicle.
package route

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
)

const (
	DefaultCapacity          = 200
	DefaultMinDistanceMeters = 1.0
)

// Router snaps a straight segment onto the road network.
type Router interface {
	Route(ctx context.Context, from, to models.Coordinate) ([]models.Coordinate, error)
}

type Config struct {
	Capacity          int
	MinDistanceMeters float64
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.MinDistanceMeters <= 0 {
		c.MinDistanceMeters = DefaultMinDistanceMeters
	}
	return c
}

// Segment is a pending road-snapping lookup between the last stored point and a new one.
type Segment struct {
	From models.Coordinate
	To   models.Coordinate
}

// Tracker is owned by one goroutine. Lookup is the only method safe to call
// from elsewhere.
type Tracker struct {
	cfg    Config
	router Router
	log    logger.Logger

	points  []models.Coordinate
	pending *Segment
	// points accepted while a lookup is pending, applied in arrival order
	queue []models.Coordinate
}

// New builds a tracker. A nil router disables road snapping.
func New(cfg Config, router Router, log logger.Logger) *Tracker {
	cfg = cfg.withDefaults()
	return &Tracker{
		cfg:    cfg,
		router: router,
		log:    log,
		points: make([]models.Coordinate, 0, cfg.Capacity),
	}
}

// AddPoint accepts a new position. It returns a segment when a road-snapping
// lookup must be performed; the caller hands the result to Complete.
func (t *Tracker) AddPoint(c models.Coordinate) *Segment {
	if tail, ok := t.tail(); ok && HaversineDistance(tail, c) < t.cfg.MinDistanceMeters {
		return nil
	}

	if t.pending != nil {
		if len(t.queue) >= t.cfg.Capacity {
			t.queue = t.queue[1:]
		}
		t.queue = append(t.queue, c)
		return nil
	}

	if len(t.points) == 0 || t.router == nil {
		t.append(c)
		return nil
	}

	t.pending = &Segment{From: t.points[len(t.points)-1], To: c}
	return t.pending
}

// Complete applies the outcome of a lookup started by AddPoint and returns
// the next segment to look up, if any. Results for segments dropped by Clear
// are ignored.
func (t *Tracker) Complete(seg *Segment, path []models.Coordinate, err error) *Segment {
	if seg == nil || seg != t.pending {
		return nil
	}
	t.pending = nil

	if err != nil || len(path) == 0 {
		t.append(seg.To)
	} else {
		for _, p := range path {
			if HaversineDistance(t.points[len(t.points)-1], p) < t.cfg.MinDistanceMeters {
				continue
			}
			t.append(p)
		}
	}

	return t.next()
}

// Lookup asks the router for the road path of seg.
func (t *Tracker) Lookup(ctx context.Context, seg *Segment) ([]models.Coordinate, error) {
	const op = "Tracker.Lookup"
	ctx = wrap.WithAction(ctx, types.ActionRouteLookup)

	if t.router == nil {
		return nil, fmt.Errorf("%s: %w", op, types.ErrNoRoute)
	}

	path, err := t.router.Route(ctx, seg.From, seg.To)
	metrics.RecordRouteLookup(err)
	if err != nil {
		t.log.Debug(ctx, "road snapping failed, using raw point", "error", err.Error())
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return path, nil
}

// Clear empties the trail and re-seeds it with the current marker position.
func (t *Tracker) Clear(current *models.Coordinate) {
	t.points = t.points[:0]
	t.pending = nil
	t.queue = nil
	if current != nil {
		t.append(*current)
	}
}

// Points returns a copy of the trail.
func (t *Tracker) Points() []models.Coordinate {
	out := make([]models.Coordinate, len(t.points))
	copy(out, t.points)
	return out
}

func (t *Tracker) Len() int {
	return len(t.points)
}

func (t *Tracker) next() *Segment {
	for len(t.queue) > 0 {
		c := t.queue[0]
		t.queue = t.queue[1:]

		last := t.points[len(t.points)-1]
		if HaversineDistance(last, c) < t.cfg.MinDistanceMeters {
			continue
		}
		t.pending = &Segment{From: last, To: c}
		return t.pending
	}
	t.queue = nil
	return nil
}

// tail is the newest accepted point, including ones not yet on the trail.
func (t *Tracker) tail() (models.Coordinate, bool) {
	switch {
	case len(t.queue) > 0:
		return t.queue[len(t.queue)-1], true
	case t.pending != nil:
		return t.pending.To, true
	case len(t.points) > 0:
		return t.points[len(t.points)-1], true
	}
	return models.Coordinate{}, false
}

func (t *Tracker) append(c models.Coordinate) {
	t.points = append(t.points, c)
	if over := len(t.points) - t.cfg.Capacity; over > 0 {
		copy(t.points, t.points[over:])
		t.points = t.points[:t.cfg.Capacity]
	}
	metrics.RoutePointsGauge.Set(float64(len(t.points)))
}
