package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeocode(t *testing.T) {
	before := testutil.ToFloat64(GeocodeRequestsTotal.WithLabelValues("locationiq", "error"))
	RecordGeocode("locationiq", errors.New("503"), 10*time.Millisecond)
	after := testutil.ToFloat64(GeocodeRequestsTotal.WithLabelValues("locationiq", "error"))

	assert.Equal(t, before+1, after)
}

func TestSetPushConnected(t *testing.T) {
	SetPushConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(PushConnectionState))

	SetPushConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(PushConnectionState))
}
