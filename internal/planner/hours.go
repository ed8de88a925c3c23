package planner

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Hours is a daily study budget that unmarshals permissively: JSON numbers
// and numeric strings are both accepted, anything else decodes to zero so
// callers fall back to DefaultDailyHours. Decoding never fails.
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	*h = 0

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*h = Hours(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return nil
	}
	*h = Hours(parsed)
	return nil
}

// Value resolves the budget, substituting fallback for missing or
// non-positive input. A non-positive fallback resolves to
// DefaultDailyHours.
func (h Hours) Value(fallback float64) float64 {
	if h > 0 {
		return float64(h)
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultDailyHours
}
