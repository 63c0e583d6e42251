// Package timewindow normalizes log timestamps and derives the active-days
// window used to project sample spend onto a month.
package timewindow

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerDay = 86400
	// numeric timestamps above this are epoch milliseconds
	millisThreshold = 1e12
)

// Policy bounds the active-days window
type Policy struct {
	// MinDays is the floor of the window
	MinDays float64 `yaml:"min_days"`
	// MaxSpanDays is the longest span still trusted as real activity
	MaxSpanDays float64 `yaml:"max_span_days"`
	// ClampDays replaces spans longer than MaxSpanDays. The default of 12
	// matches the span of the sample data the heuristics were tuned on.
	ClampDays float64 `yaml:"clamp_days"`
	// DefaultDays is used when no message carries a usable timestamp
	DefaultDays float64 `yaml:"default_days"`
}

// DefaultPolicy returns the stock window policy
func DefaultPolicy() Policy {
	return Policy{
		MinDays:     1,
		MaxSpanDays: 30,
		ClampDays:   12,
		DefaultDays: 14,
	}
}

// Normalize converts a timestamp to epoch seconds.
// Accepted inputs: nil, ISO-8601 strings (a trailing "Z" means UTC), numeric
// epoch seconds or milliseconds of any numeric Go type, time.Time, and raw JSON
// holding any of those. Anything else yields 0.
func Normalize(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case json.RawMessage:
		return normalizeJSON(t)
	case []byte:
		return normalizeJSON(t)
	case string:
		return parseISO(t)
	case time.Time:
		if t.IsZero() {
			return 0
		}
		return float64(t.UnixNano()) / 1e9
	case float64:
		return fromNumber(t)
	case float32:
		return fromNumber(float64(t))
	case int:
		return fromNumber(float64(t))
	case int64:
		return fromNumber(float64(t))
	case int32:
		return fromNumber(float64(t))
	case uint64:
		return fromNumber(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return fromNumber(f)
	}
	return 0
}

func normalizeJSON(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		return parseISO(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0
	}
	return fromNumber(f)
}

func fromNumber(f float64) float64 {
	if f > millisThreshold {
		return f / 1000
	}
	return f
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISO(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	for _, layout := range isoLayouts {
		// layouts without a zone are read as UTC
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixNano()) / 1e9
		}
	}
	return 0
}

// ActiveDays computes the projection window from normalized timestamps.
// Zero (unknown) timestamps are ignored. The result is never below
// p.MinDays (or 1, whichever is larger).
func ActiveDays(timestamps []float64, p Policy) float64 {
	floor := p.MinDays
	if floor < 1 {
		floor = 1
	}

	var lo, hi float64
	seen := false
	for _, ts := range timestamps {
		if ts == 0 {
			continue
		}
		if !seen {
			lo, hi = ts, ts
			seen = true
			continue
		}
		if ts < lo {
			lo = ts
		}
		if ts > hi {
			hi = ts
		}
	}

	if !seen {
		return max(p.DefaultDays, floor)
	}

	days := max((hi-lo)/secondsPerDay, floor)
	if p.MaxSpanDays > 0 && days > p.MaxSpanDays && p.ClampDays > 0 {
		days = max(p.ClampDays, floor)
	}
	return days
}

// Day returns the UTC calendar day (YYYY-MM-DD) of an epoch-seconds value
func Day(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format("2006-01-02")
}
