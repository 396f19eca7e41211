// Package osrm snaps straight segments to roads using an OSRM routing server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

const DefaultBaseURL = "https://router.project-osrm.org"

type Client struct {
	baseURL string
	profile string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		http:    &http.Client{Timeout: timeout},
	}
}

// OSRM response format
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route returns the road path between two points, both ends included.
func (c *Client) Route(ctx context.Context, from, to models.Coordinate) ([]models.Coordinate, error) {
	const op = "osrm.Route"
	ctx = wrap.WithAction(ctx, types.ActionRouteLookup)

	// OSRM takes lon,lat pairs
	url := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		c.baseURL, c.profile, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: build request: %w", op, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: HTTP error: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: OSRM returned %d", op, resp.StatusCode))
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: JSON decode failed: %w", op, err))
	}

	if parsed.Code != "" && parsed.Code != "Ok" {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %s: %s", op, parsed.Code, parsed.Message))
	}
	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Geometry.Coordinates) == 0 {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoRoute))
	}

	coords := make([]models.Coordinate, 0, len(parsed.Routes[0].Geometry.Coordinates))
	for _, pair := range parsed.Routes[0].Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		coords = append(coords, models.Coordinate{Longitude: pair[0], Latitude: pair[1]})
	}
	if len(coords) == 0 {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoRoute))
	}

	return coords, nil
}
