// Package geocode turns coordinates into a display address through an
// ordered chain of providers, falling back to the coordinates themselves.
package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
)

const (
	DefaultTimeout = 10 * time.Second
	ResolvingText  = "Resolving address..."
)

type Provider interface {
	Name() string
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

type Resolver struct {
	providers []Provider
	timeout   time.Duration
	log       logger.Logger
}

// New builds a resolver that tries providers in the given order.
func New(timeout time.Duration, log logger.Logger, providers ...Provider) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
		log:       log,
	}
}

// Resolve never fails: when every provider fails it returns the formatted
// coordinates with state fallback. Each provider gets one attempt.
func (r *Resolver) Resolve(ctx context.Context, c models.Coordinate) models.Address {
	ctx = wrap.WithAction(ctx, types.ActionGeocode)

	for _, p := range r.providers {
		if ctx.Err() != nil {
			break
		}

		text, err := r.try(ctx, p, c)
		if err != nil {
			r.log.Debug(wrap.ErrorCtx(ctx, err), "geocoding provider failed, falling through",
				"provider", p.Name(),
				"error", err.Error(),
			)
			continue
		}

		return models.Address{
			Text:     text,
			State:    types.AddressResolved,
			Provider: p.Name(),
		}
	}

	return Fallback(c)
}

func (r *Resolver) try(ctx context.Context, p Provider, c models.Coordinate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.ReverseGeocode(ctx, c.Latitude, c.Longitude)
	if err == nil && strings.TrimSpace(text) == "" {
		err = types.ErrNoAddress
	}
	metrics.RecordGeocode(p.Name(), err, time.Since(start))

	return strings.TrimSpace(text), err
}

// Placeholder is shown while a lookup is in flight.
func Placeholder() models.Address {
	return models.Address{Text: ResolvingText, State: types.AddressResolving}
}

// Idle is the address before any coordinates are known.
func Idle() models.Address {
	return models.Address{State: types.AddressIdle}
}

// Fallback formats the raw coordinates as the display address.
func Fallback(c models.Coordinate) models.Address {
	return models.Address{
		Text:  FormatCoordinates(c),
		State: types.AddressFallback,
	}
}

func FormatCoordinates(c models.Coordinate) string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}
