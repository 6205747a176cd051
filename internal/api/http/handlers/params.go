package handlers

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// parseInt falls back to def for missing or malformed values.
func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optional[T ~string](val string) *T {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	v := T(val)
	return &v
}

// parseTime accepts RFC3339 timestamps or plain dates. A plain end date covers the whole day.
func parseTime(field, val string, endOfDay bool) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{field: "must be an RFC3339 timestamp or YYYY-MM-DD date"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseBool(field, val string) (*bool, error) {
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{field: "must be true or false"})
	}
	return &b, nil
}
