package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	t "github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type envelope map[string]any

// writeJSON writes data as indented JSON. Nothing is written if encoding fails.
func writeJSON(w http.ResponseWriter, status int, data envelope) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(js, '\n'))
	return err
}

func GetCode(err error) int {
	switch {
	case IsOneOf(err, t.ErrEngineStopped):
		return http.StatusServiceUnavailable
	case IsOneOf(err, context.DeadlineExceeded, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func IsOneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
