package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Push channel metrics
	PushConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_push_connected",
			Help: "Push socket state (1=connected, 0=not connected)",
		},
	)

	PushReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_push_reconnects_total",
			Help: "Total number of scheduled push reconnect attempts",
		},
	)

	PushMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_push_messages_total",
			Help: "Total number of push messages by type and outcome",
		},
		[]string{"type", "result"},
	)

	// Derived artifacts
	RouteLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_route_lookups_total",
			Help: "Total number of road-snapping lookups",
		},
		[]string{"result"},
	)

	RoutePointsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_route_points",
			Help: "Current number of points in the drawn trail",
		},
	)

	GeocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_geocode_requests_total",
			Help: "Total number of reverse-geocoding provider calls",
		},
		[]string{"provider", "result"},
	)

	GeocodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_geocode_duration_seconds",
			Help:    "Reverse-geocoding provider call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	MapSubscribersGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_map_subscribers",
			Help: "Current number of websocket map renderers attached",
		},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_rabbitmq_messages_published_total",
			Help: "Total number of map commands published to RabbitMQ",
		},
		[]string{"exchange", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HttpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPushMessage counts one inbound push frame
func RecordPushMessage(msgType, result string) {
	PushMessagesTotal.WithLabelValues(msgType, result).Inc()
}

// SetPushConnected records the push socket state
func SetPushConnected(connected bool) {
	if connected {
		PushConnectionState.Set(1)
		return
	}
	PushConnectionState.Set(0)
}

// RecordRouteLookup counts one road-snapping lookup
func RecordRouteLookup(err error) {
	RouteLookupsTotal.WithLabelValues(status(err)).Inc()
}

// RecordGeocode records one provider call
func RecordGeocode(provider string, err error, duration time.Duration) {
	GeocodeRequestsTotal.WithLabelValues(provider, status(err)).Inc()
	GeocodeDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(exchange string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(exchange, status(err)).Inc()
}
