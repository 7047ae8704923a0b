package domain_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name      string
		seconds   int64
		wantHours float64
		wantLabel string
	}{
		{"zero", 0, 0, "0 weeks, 0 days, 0 hours"},
		{"one hour", 3600, 1, "0 weeks, 0 days, 1 hour"},
		{"three hours", 10800, 3, "0 weeks, 0 days, 3 hours"},
		{"one day", 8 * 3600, 8, "0 weeks, 1 day, 0 hours"},
		{"one week", 40 * 3600, 40, "1 week, 0 days, 0 hours"},
		{"week day hour", 49 * 3600, 49, "1 week, 1 day, 1 hour"},
		{"two weeks", 97 * 3600, 97, "2 weeks, 2 days, 1 hour"},
		{"half hour rounds to even", 5400, 1.5, "0 weeks, 0 days, 2 hours"},
		{"two and a half rounds to even", 9000, 2.5, "0 weeks, 0 days, 2 hours"},
		{"fractional hours", 1234, 0.34, "0 weeks, 0 days, 0 hours"},
		{"leftover rounds up to a full day", 27360, 7.6, "0 weeks, 0 days, 8 hours"},
		{"negative clamps to zero", -3600, 0, "0 weeks, 0 days, 0 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.FormatDuration(tt.seconds)
			assert.InDelta(t, tt.wantHours, d.Hours, 1e-9)
			assert.Equal(t, tt.wantLabel, d.Label)
		})
	}
}

func TestFormatDuration_Monotonic(t *testing.T) {
	prev := domain.FormatDuration(0).Hours
	for s := int64(1); s < 400_000; s += 97 {
		h := domain.FormatDuration(s).Hours
		require.LessOrEqual(t, prev, h, "seconds=%d", s)
		prev = h
	}
}

func TestFormatDuration_LabelRoundTrip(t *testing.T) {
	for s := int64(0); s < 400_000; s += 131 {
		d := domain.FormatDuration(s)

		var (
			weeks, days, hours int
			u1, u2, u3         string
		)
		n, err := fmt.Sscanf(d.Label, "%d %s %d %s %d %s", &weeks, &u1, &days, &u2, &hours, &u3)
		require.NoError(t, err)
		require.Equal(t, 6, n)

		implied := float64(weeks*domain.HoursPerWeek + days*domain.HoursPerDay + hours)
		exact := float64(s) / domain.SecondsPerHour
		assert.LessOrEqual(t, math.Abs(implied-exact), 1.0, "seconds=%d label=%q", s, d.Label)
	}
}
