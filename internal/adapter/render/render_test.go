package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type recordSink struct {
	cmds []models.MapCommand
	err  error
}

func (r *recordSink) Send(_ context.Context, cmd models.MapCommand) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

type countBroadcaster struct{ msgs []any }

func (b *countBroadcaster) Broadcast(msg any) int {
	b.msgs = append(b.msgs, msg)
	return 1
}

func TestCommands_Encode(t *testing.T) {
	sink := &recordSink{}
	c := New("35000", sink)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	ctx := context.Background()
	pos := models.Coordinate{Latitude: 27.7, Longitude: 85.3}

	require.NoError(t, c.SetMarkerPosition(ctx, pos, models.IconState{Motion: types.MotionIdle}))
	require.NoError(t, c.Rotate(ctx, 90, 90))
	require.NoError(t, c.PanTo(ctx, pos))

	require.Len(t, sink.cmds, 3)
	assert.Equal(t, types.CommandSetMarker, sink.cmds[0].Type)
	assert.Equal(t, "35000", sink.cmds[0].IMEI)
	assert.Equal(t, fixed, sink.cmds[0].Timestamp)
	assert.Equal(t, RotateData{Bearing: 90, Delta: 90}, sink.cmds[1].Data)
	assert.Equal(t, PanData{Position: pos}, sink.cmds[2].Data)
}

func TestCommands_PolylineIsCopied(t *testing.T) {
	sink := &recordSink{}
	c := New("1", sink)

	points := []models.Coordinate{{Latitude: 1, Longitude: 1}}
	require.NoError(t, c.SetPolyline(context.Background(), points, models.PolylineStyle{Weight: 4}))
	points[0].Latitude = 9

	data := sink.cmds[0].Data.(PolylineData)
	assert.Equal(t, 1.0, data.Points[0].Latitude)
}

func TestCommands_Replay(t *testing.T) {
	c := New("1")
	ctx := context.Background()
	pos := models.Coordinate{Latitude: 1, Longitude: 2}

	assert.Empty(t, c.Replay())

	require.NoError(t, c.PanTo(ctx, pos))
	require.NoError(t, c.Rotate(ctx, 45, 45))
	require.NoError(t, c.Rotate(ctx, 90, 45))
	require.NoError(t, c.ConnectionState(ctx, types.ConnEventConnected))

	replay := c.Replay()
	require.Len(t, replay, 3)
	assert.Equal(t, types.CommandConnectionState, replay[0].Type)
	assert.Equal(t, types.CommandRotate, replay[1].Type)
	assert.Equal(t, RotateData{Bearing: 90}, replay[1].Data)
	assert.Equal(t, types.CommandPanTo, replay[2].Type)
}

func TestCommands_SinkErrorsJoined(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordSink{}
	bad := &recordSink{err: boom}
	c := New("1", bad, ok)

	err := c.PanTo(context.Background(), models.Coordinate{})
	assert.ErrorIs(t, err, boom)
	// the failing sink does not starve the others
	assert.Len(t, ok.cmds, 1)
}

func TestHubSink(t *testing.T) {
	b := &countBroadcaster{}
	c := New("1", NewHubSink(b))

	require.NoError(t, c.UpdateInfo(context.Background(), models.InfoPanel{}))
	require.Len(t, b.msgs, 1)
	assert.Equal(t, types.CommandUpdateInfo, b.msgs[0].(models.MapCommand).Type)
}
