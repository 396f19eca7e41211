// Package nominatim is the OpenStreetMap reverse-geocoding client used as
// the secondary provider.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "vehicle-tracker/1.0"

	// public instance policy: at most one request per second
	requestsPerSecond = 1
)

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

type reversePayload struct {
	DisplayName string `json:"display_name"`
	Error       any    `json:"error"`
}

func (c *Client) Name() string {
	return "nominatim"
}

func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	const op = "nominatim.ReverseGeocode"
	ctx = wrap.WithAction(ctx, "nominatim_reverse")

	// fails at once when the slot lies past ctx's deadline
	if err := c.limiter.Wait(ctx); err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: rate limited: %w", op, err))
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: build request: %w", op, err))
	}
	// Nominatim usage policy requires an identifying agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return "", wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return "", wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload reversePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: decode response: %w", op, err))
	}

	if payload.Error != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: provider error: %v", op, payload.Error))
	}
	if strings.TrimSpace(payload.DisplayName) == "" {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoAddress))
	}

	return payload.DisplayName, nil
}
