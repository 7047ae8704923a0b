package domain

import (
	"fmt"
	"math"
)

// Working-time convention used for workload labels.
const (
	SecondsPerHour = 3600
	HoursPerDay    = 8
	HoursPerWeek   = 40
)

// Duration is a display form of an effort estimate.
type Duration struct {
	Hours float64
	Label string
}

// FormatDuration converts effort seconds to hours (two decimals) and a
// "W weeks, D days, H hours" label.
//
// Weeks and days are floored from the unrounded hour count and only the
// leftover hours are rounded, so the label may differ from Hours by a
// fraction of an hour.
func FormatDuration(seconds int64) Duration {
	if seconds < 0 {
		seconds = 0
	}
	total := float64(seconds) / SecondsPerHour

	weeks := math.Floor(total / HoursPerWeek)
	remaining := total - weeks*HoursPerWeek
	days := math.Floor(remaining / HoursPerDay)
	hours := math.RoundToEven(remaining - days*HoursPerDay)

	return Duration{
		Hours: roundHours(total),
		Label: fmt.Sprintf("%d %s, %d %s, %d %s",
			int64(weeks), pluralize(int64(weeks), "week"),
			int64(days), pluralize(int64(days), "day"),
			int64(hours), pluralize(int64(hours), "hour"),
		),
	}
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
