package route

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
)

type fakeRouter struct {
	path  func(from, to models.Coordinate) []models.Coordinate
	err   error
	calls int
}

func (f *fakeRouter) Route(_ context.Context, from, to models.Coordinate) ([]models.Coordinate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.path(from, to), nil
}

// midpoint path: from, middle, to
func viaMidpoint(from, to models.Coordinate) []models.Coordinate {
	mid := models.Coordinate{
		Latitude:  (from.Latitude + to.Latitude) / 2,
		Longitude: (from.Longitude + to.Longitude) / 2,
	}
	return []models.Coordinate{from, mid, to}
}

func via(mid models.Coordinate) func(from, to models.Coordinate) []models.Coordinate {
	return func(from, to models.Coordinate) []models.Coordinate {
		return []models.Coordinate{from, mid, to}
	}
}

var mid = models.Coordinate{Latitude: 27.70012, Longitude: 85.30007}

func pt(i int) models.Coordinate {
	// ~11 m apart
	return models.Coordinate{Latitude: 27.7 + float64(i)*0.0001, Longitude: 85.3}
}

func TestHaversineDistance(t *testing.T) {
	d := HaversineDistance(models.Coordinate{Latitude: 0, Longitude: 0}, models.Coordinate{Latitude: 0, Longitude: 1})
	assert.InDelta(t, 111195, d, 1)
	assert.Zero(t, HaversineDistance(pt(1), pt(1)))
}

func TestAddPoint_DedupIsIdempotent(t *testing.T) {
	tr := New(Config{}, nil, logger.Discard())
	ctx := context.Background()

	assert.Equal(t, 1, add(ctx, tr, pt(0)))
	assert.Equal(t, 0, add(ctx, tr, pt(0)))

	jitter := pt(0)
	jitter.Longitude += 0.000001 // ~10 cm
	assert.Equal(t, 0, add(ctx, tr, jitter))
	assert.Equal(t, 1, tr.Len())
}

func TestAddPoint_FirstPointSkipsRouting(t *testing.T) {
	r := &fakeRouter{path: viaMidpoint}
	tr := New(Config{}, r, logger.Discard())

	add(context.Background(), tr, pt(0))
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, []models.Coordinate{pt(0)}, tr.Points())
}

func TestAddPoint_SnappedPathAppended(t *testing.T) {
	r := &fakeRouter{path: via(mid)}
	tr := New(Config{}, r, logger.Discard())
	ctx := context.Background()

	add(ctx, tr, pt(0))
	n := add(ctx, tr, pt(2))

	// the start point duplicates the trail tail and is skipped
	assert.Equal(t, 2, n)
	assert.Equal(t, []models.Coordinate{pt(0), mid, pt(2)}, tr.Points())
}

func TestAddPoint_LookupFailureAppendsRawPoint(t *testing.T) {
	r := &fakeRouter{err: errors.New("osrm: 503")}
	tr := New(Config{}, r, logger.Discard())
	ctx := context.Background()

	add(ctx, tr, pt(0))
	before := tr.Len()
	n := add(ctx, tr, pt(5))

	assert.Equal(t, 1, n)
	assert.Equal(t, before+1, tr.Len())
	assert.Equal(t, pt(5), tr.Points()[tr.Len()-1])
}

func TestAddPoint_EmptyPathFallsBack(t *testing.T) {
	r := &fakeRouter{path: func(_, _ models.Coordinate) []models.Coordinate { return nil }}
	tr := New(Config{}, r, logger.Discard())
	ctx := context.Background()

	add(ctx, tr, pt(0))
	assert.Equal(t, 1, add(ctx, tr, pt(3)))
}

func TestAddPoint_CapacityBound(t *testing.T) {
	r := &fakeRouter{path: viaMidpoint}
	tr := New(Config{Capacity: 10}, r, logger.Discard())
	ctx := context.Background()

	for i := range 50 {
		add(ctx, tr, pt(i*2))
		require.LessOrEqual(t, tr.Len(), 10)
	}

	pts := tr.Points()
	assert.Equal(t, pt(98), pts[len(pts)-1], "newest point survives trimming")
}

// add drives AddPoint/Lookup/Complete to completion and returns how many
// points landed on the trail. Capacity trimming is not accounted for.
func add(ctx context.Context, tr *Tracker, c models.Coordinate) int {
	before := tr.Len()
	seg := tr.AddPoint(c)
	for seg != nil {
		path, err := tr.Lookup(ctx, seg)
		seg = tr.Complete(seg, path, err)
	}
	return tr.Len() - before
}

func TestLookup_NoRouter(t *testing.T) {
	tr := New(Config{}, nil, logger.Discard())
	_, err := tr.Lookup(context.Background(), &Segment{From: pt(0), To: pt(1)})
	assert.ErrorIs(t, err, types.ErrNoRoute)
}

func TestAsync_PointsQueuedBehindPendingLookup(t *testing.T) {
	r := &fakeRouter{path: via(mid)}
	tr := New(Config{}, r, logger.Discard())

	assert.Nil(t, tr.AddPoint(pt(0)))

	seg := tr.AddPoint(pt(2))
	require.NotNil(t, seg)
	assert.True(t, tr.pending != nil)

	// arrives while the lookup is in flight
	assert.Nil(t, tr.AddPoint(pt(4)))
	// duplicate of the queued tail
	assert.Nil(t, tr.AddPoint(pt(4)))

	next := tr.Complete(seg, via(mid)(seg.From, seg.To), nil)
	require.NotNil(t, next)
	assert.Equal(t, pt(2), next.From)
	assert.Equal(t, pt(4), next.To)

	assert.Nil(t, tr.Complete(next, nil, errors.New("timeout")))
	assert.False(t, tr.pending != nil)
	assert.Equal(t, []models.Coordinate{pt(0), mid, pt(2), pt(4)}, tr.Points())
}

func TestAsync_StaleResultAfterClearIgnored(t *testing.T) {
	r := &fakeRouter{path: viaMidpoint}
	tr := New(Config{}, r, logger.Discard())

	tr.AddPoint(pt(0))
	seg := tr.AddPoint(pt(2))
	require.NotNil(t, seg)

	current := pt(7)
	tr.Clear(&current)

	assert.Nil(t, tr.Complete(seg, viaMidpoint(seg.From, seg.To), nil))
	assert.Equal(t, []models.Coordinate{pt(7)}, tr.Points())
}

func TestClear_WithoutPosition(t *testing.T) {
	tr := New(Config{}, nil, logger.Discard())
	add(context.Background(), tr, pt(0))
	tr.Clear(nil)
	assert.Zero(t, tr.Len())
}

func TestStyle(t *testing.T) {
	assert.Equal(t, types.MotionIdle, Style(types.MotionIdle).Motion)
	assert.Equal(t, types.MotionMoving, Style(types.MotionMoving).Motion)
	assert.Equal(t, types.MotionIdle, Style("").Motion)
	assert.Greater(t, Style(types.MotionMoving).Weight, Style(types.MotionIdle).Weight)
}
