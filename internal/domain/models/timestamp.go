package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// accepted string layouts; zone-less ones are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// epoch values above this are milliseconds
const epochMillisFrom = 1e12

// ParseTimestamp reads a wire timestamp: RFC3339, naive ISO with T or a
// space, or epoch seconds/milliseconds as a number or numeric string.
// Anything else, including null, yields nil so the field counts as absent.
func ParseTimestamp(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] != '"' {
		return parseEpoch(string(raw))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return parseEpoch(s)
}

func parseEpoch(s string) *time.Time {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}

	var t time.Time
	if f >= epochMillisFrom {
		t = time.UnixMilli(int64(f)).UTC()
	} else {
		sec, frac := math.Modf(f)
		t = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return &t
}
