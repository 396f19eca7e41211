package locationIQ

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

func server(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reverse", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "27.700000", r.URL.Query().Get("lat"))
		assert.Equal(t, "85.300000", r.URL.Query().Get("lon"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReverseGeocode_OK(t *testing.T) {
	srv := server(t, http.StatusOK, `{"display_name":"Durbar Marg, Kathmandu"}`)
	c := New("secret", srv.URL, time.Second)

	addr, err := c.ReverseGeocode(context.Background(), 27.7, 85.3)
	require.NoError(t, err)
	assert.Equal(t, "Durbar Marg, Kathmandu", addr)
}

func TestReverseGeocode_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 200", http.StatusTooManyRequests, `{"error":"Rate Limited"}`},
		{"error field", http.StatusOK, `{"error":"Unable to geocode"}`},
		{"malformed", http.StatusOK, `<html>`},
		{"empty address", http.StatusOK, `{"display_name":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := server(t, tt.status, tt.body)
			c := New("secret", srv.URL, time.Second)

			_, err := c.ReverseGeocode(context.Background(), 27.7, 85.3)
			assert.Error(t, err)
		})
	}
}

func TestReverseGeocode_EmptyAddressSentinel(t *testing.T) {
	srv := server(t, http.StatusOK, `{}`)
	c := New("secret", srv.URL, time.Second)

	_, err := c.ReverseGeocode(context.Background(), 27.7, 85.3)
	assert.ErrorIs(t, err, types.ErrNoAddress)
}

func TestReverseGeocode_NoKey(t *testing.T) {
	c := New("", "http://127.0.0.1:1", time.Second)
	_, err := c.ReverseGeocode(context.Background(), 27.7, 85.3)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
