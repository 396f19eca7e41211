package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

var (
	from = models.Coordinate{Latitude: 27.7, Longitude: 85.3}
	to   = models.Coordinate{Latitude: 27.71, Longitude: 85.31}
)

func TestRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/85.300000,27.700000;85.310000,27.710000", r.URL.Path)
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[85.3,27.7],[85.305,27.704],[85.31,27.71]]}}]}`))
	}))
	defer srv.Close()

	path, err := New(srv.URL, time.Second).Route(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, models.Coordinate{Latitude: 27.704, Longitude: 85.305}, path[1])
}

func TestRoute_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Route(context.Background(), from, to)
	assert.ErrorIs(t, err, types.ErrNoRoute)
}

func TestRoute_ErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoSegment","message":"Could not find a matching segment"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Route(context.Background(), from, to)
	assert.ErrorContains(t, err, "NoSegment")
}

func TestRoute_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Route(context.Background(), from, to)
	assert.ErrorContains(t, err, "502")
}
