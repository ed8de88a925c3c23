package planner

import (
	"encoding/json"
	"testing"
)

func TestHoursUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "number", raw: `{"daily_hours": 2.5}`, want: 2.5},
		{name: "integer", raw: `{"daily_hours": 3}`, want: 3},
		{name: "numeric_string", raw: `{"daily_hours": "1.5"}`, want: 1.5},
		{name: "padded_string", raw: `{"daily_hours": " 2 "}`, want: 2},
		{name: "unparsable_string", raw: `{"daily_hours": "abc"}`, want: 0},
		{name: "null", raw: `{"daily_hours": null}`, want: 0},
		{name: "absent", raw: `{}`, want: 0},
		{name: "object", raw: `{"daily_hours": {"h": 2}}`, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body struct {
				DailyHours Hours `json:"daily_hours"`
			}
			if err := json.Unmarshal([]byte(tc.raw), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if float64(body.DailyHours) != tc.want {
				t.Fatalf("got %v, want %v", float64(body.DailyHours), tc.want)
			}
		})
	}
}

func TestHoursValue(t *testing.T) {
	if got := Hours(0).Value(3); got != 3 {
		t.Fatalf("zero hours resolved to %v, want fallback 3", got)
	}
	if got := Hours(-1).Value(3); got != 3 {
		t.Fatalf("negative hours resolved to %v, want fallback 3", got)
	}
	if got := Hours(1.5).Value(3); got != 1.5 {
		t.Fatalf("positive hours resolved to %v, want 1.5", got)
	}
	if got := Hours(0).Value(0); got != DefaultDailyHours {
		t.Fatalf("zero fallback resolved to %v, want default %v", got, DefaultDailyHours)
	}
}
