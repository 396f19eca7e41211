package locationIQ

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

var ErrNoAPIKey = errors.New("locationiq api key is not configured")

const DefaultBaseURL = "https://us1.locationiq.com"

type LocationIQClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type AddressPayload struct {
	Address string `json:"display_name"`
	Error   string `json:"error"`
}

func (c *LocationIQClient) Name() string {
	return "locationiq"
}

// ReverseGeocode returns the display address for the coordinates.
func (c *LocationIQClient) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	const op = "LocationIQClient.ReverseGeocode"
	ctx = wrap.WithAction(ctx, "locationiq_reverse")

	if c.apiKey == "" {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrNoAPIKey))
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: build request: %w", op, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceErr)
		return "", wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload AddressPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		ctx = wrap.WithAction(ctx, "decode_address_payload")
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}

	if payload.Error != "" {
		return "", wrap.Error(ctx, fmt.Errorf("%s: provider error: %s", op, payload.Error))
	}
	if strings.TrimSpace(payload.Address) == "" {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoAddress))
	}

	return payload.Address, nil
}
