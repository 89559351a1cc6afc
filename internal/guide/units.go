// SPDX-License-Identifier: MIT

// Package guide turns a user-level listings request into a single merged,
// deduplicated listing, resolving each elementary fetch unit through the
// cache or the upstream client.
package guide

import (
	"errors"
	"fmt"
	"time"

	"github.com/guidepipe/tvg2x/internal/tvguide"
)

const dateLayout = "2006-01-02"

// ErrInvalidRange marks a fetch window that fails validation before any
// cache or network activity begins.
var ErrInvalidRange = errors.New("guide: invalid fetch range")

// Range is the requested fetch window: inclusive date and hour bounds.
// A single date or hour is expressed as equal start and end.
type Range struct {
	StartDate string // YYYY-MM-DD
	EndDate   string
	StartHour int // 0-23
	EndHour   int
}

// Expand produces the ordered fetch units for every (date, hour) pair in the
// window: dates outer, hours inner, both ascending.
func (r Range) Expand(platform, region string) ([]tvguide.Unit, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q: %v", ErrInvalidRange, r.StartDate, err)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q: %v", ErrInvalidRange, r.EndDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s before start date %s", ErrInvalidRange, r.EndDate, r.StartDate)
	}
	if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 23 {
		return nil, fmt.Errorf("%w: hours must be within 0-23", ErrInvalidRange)
	}
	if r.EndHour < r.StartHour {
		return nil, fmt.Errorf("%w: end hour %d before start hour %d", ErrInvalidRange, r.EndHour, r.StartHour)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	units := make([]tvguide.Unit, 0, days*(r.EndHour-r.StartHour+1))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		for hour := r.StartHour; hour <= r.EndHour; hour++ {
			units = append(units, tvguide.Unit{
				Platform: platform,
				Region:   region,
				Date:     date,
				Hour:     hour,
			})
		}
	}
	return units, nil
}

// NowRange derives the window for "now" mode: from one hour ago through the
// end of each day up to now+days. Computed in UTC to match the API's clock.
func NowRange(now time.Time, days int) Range {
	start := now.UTC().Add(-time.Hour)
	end := now.UTC().AddDate(0, 0, days)
	return Range{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		StartHour: start.Hour(),
		EndHour:   23,
	}
}
