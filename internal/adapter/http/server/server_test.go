package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/config"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/http/middleware"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	ws "github.com/Temutjin2k/vehicle-tracker/pkg/wsHub"
)

type stubTracker struct{}

func (stubTracker) Snapshot(context.Context) (models.Snapshot, error) { return models.Snapshot{}, nil }
func (stubTracker) ClearRoute(context.Context) (int, error)           { return 0, nil }
func (stubTracker) ReapplyHeading(context.Context) (bool, error)      { return true, nil }

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{ServiceName: "vehicle-tracker", HTTP: config.HTTPConfig{Port: "0"}}
	api, err := New(cfg, stubTracker{}, ws.NewConnHub(logger.Discard()), nil, logger.Discard())
	require.NoError(t, err)
	return api.Handler()
}

func TestRoutes(t *testing.T) {
	h := newAPI(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/state", http.StatusOK},
		{http.MethodPost, "/route/clear", http.StatusOK},
		{http.MethodPost, "/heading/reapply", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/state", http.StatusMethodNotAllowed},
		{http.MethodGet, "/route/clear", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
		})
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(config.Config{}, nil, ws.NewConnHub(logger.Discard()), nil, logger.Discard())
	assert.Error(t, err)

	_, err = New(config.Config{}, stubTracker{}, nil, nil, logger.Discard())
	assert.Error(t, err)
}
