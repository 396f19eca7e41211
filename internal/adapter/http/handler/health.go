package handler

import (
	"net/http"

	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	log         logger.Logger
}

func NewHealth(serviceName string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		log:         log,
	}
}

// HealthCheck - returns system information.
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
		},
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
