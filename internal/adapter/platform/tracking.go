// Package platform talks to the tracking platform REST API.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

var ErrNotFound = errors.New("vehicle not found")

// CredentialSource yields the current session token.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
}

func New(baseURL string, creds CredentialSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchTracking loads the initial snapshot for one device.
func (c *Client) FetchTracking(ctx context.Context, imei string) (models.Bootstrap, error) {
	const op = "platform.FetchTracking"
	ctx = wrap.WithAction(ctx, types.ActionBootstrap)

	token, err := c.creds.Token(ctx)
	if err != nil {
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	endpoint := fmt.Sprintf("%s/tracking/%s/", c.baseURL, url.PathEscape(imei))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: build request: %w", op, err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrBootstrapFailed, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrBootstrapFailed, ErrNotFound))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: %w: status %d: %s",
			op, types.ErrBootstrapFailed, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out models.Bootstrap
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Bootstrap{}, wrap.Error(ctx, fmt.Errorf("%s: %w: decode: %v", op, types.ErrBootstrapFailed, err))
	}
	if out.Vehicle.IMEI == "" {
		out.Vehicle.IMEI = imei
	}

	return out, nil
}
