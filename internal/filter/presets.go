package filter

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Bounds resolves a date range to absolute bounds. Preset ranges are
// computed relative to now, so a stored "last 7 days" keeps sliding.
func Bounds(r types.DateRange, now time.Time, loc *time.Location) (from, to *time.Time, err error) {
	if r.Preset == "" {
		return r.From, r.To, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	end := now
	var start time.Time
	switch r.Preset {
	case types.PresetLast24Hours:
		start = now.Add(-24 * time.Hour)
	case types.PresetLast7Days:
		start = now.AddDate(0, 0, -7)
	case types.PresetLast30Days:
		start = now.AddDate(0, 0, -30)
	case types.PresetLast90Days:
		start = now.AddDate(0, 0, -90)
	case types.PresetToday:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	case types.PresetThisMonth:
		y, m, _ := now.Date()
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	default:
		return nil, nil, fmt.Errorf("%w: %q", types.ErrUnknownPreset, r.Preset)
	}
	return &start, &end, nil
}
