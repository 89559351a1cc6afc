// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Validate rejects invalid or mutually exclusive settings. It runs before
// any I/O; a nil return means the options describe exactly one coherent run.
func (o Options) Validate() error {
	if o.InputFile == "" && !o.API && !o.Now {
		return fmt.Errorf("%w: provide an input file or API parameters", ErrMissingInput)
	}
	if o.InputFile != "" && (o.API || o.Now) {
		return fmt.Errorf("%w: input file and API fetch are mutually exclusive", ErrConflictingOptions)
	}
	if o.Output == "" {
		return fmt.Errorf("%w: output path", ErrMissingField)
	}
	if o.CacheOnly && o.NoCache {
		return fmt.Errorf("%w: cache-only mode with cache disabled", ErrConflictingOptions)
	}
	if o.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidValue)
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidValue)
	}
	if o.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: cache TTL must not be negative", ErrInvalidValue)
	}
	if o.Timezone != "" {
		if _, err := time.LoadLocation(o.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q: %v", ErrInvalidValue, o.Timezone, err)
		}
	}

	if o.InputFile != "" {
		return nil
	}
	return o.validateAPI()
}

func (o Options) validateAPI() error {
	if o.Platform == "" {
		return fmt.Errorf("%w: platform", ErrMissingField)
	}
	if o.Region == "" {
		return fmt.Errorf("%w: region", ErrMissingField)
	}

	if o.Now {
		if o.Date != "" || o.StartDate != "" || o.EndDate != "" ||
			o.Hour >= 0 || o.StartHour >= 0 || o.EndHour >= 0 {
			return fmt.Errorf("%w: now mode does not take date or hour selections", ErrConflictingOptions)
		}
		if o.NowDays < 1 {
			return fmt.Errorf("%w: now_days must be at least 1", ErrInvalidValue)
		}
		return nil
	}

	// Date selection: single date XOR date range.
	switch {
	case o.Date != "":
		if o.StartDate != "" || o.EndDate != "" {
			return fmt.Errorf("%w: date and date range are mutually exclusive", ErrConflictingOptions)
		}
		if err := checkDate(o.Date); err != nil {
			return err
		}
	case o.StartDate != "" || o.EndDate != "":
		if o.StartDate == "" || o.EndDate == "" {
			return fmt.Errorf("%w: start_date and end_date must be set together", ErrMissingField)
		}
		start, err := time.Parse(dateLayout, o.StartDate)
		if err != nil {
			return fmt.Errorf("%w: start_date %q must be YYYY-MM-DD", ErrInvalidValue, o.StartDate)
		}
		end, err := time.Parse(dateLayout, o.EndDate)
		if err != nil {
			return fmt.Errorf("%w: end_date %q must be YYYY-MM-DD", ErrInvalidValue, o.EndDate)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end_date before start_date", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: date or date range", ErrMissingField)
	}

	// Hour selection: single hour XOR hour range.
	switch {
	case o.Hour >= 0:
		if o.StartHour >= 0 || o.EndHour >= 0 {
			return fmt.Errorf("%w: hour and hour range are mutually exclusive", ErrConflictingOptions)
		}
		if err := checkHour(o.Hour, "hour"); err != nil {
			return err
		}
	case o.StartHour >= 0 || o.EndHour >= 0:
		if o.StartHour < 0 || o.EndHour < 0 {
			return fmt.Errorf("%w: start_hour and end_hour must be set together", ErrMissingField)
		}
		if err := checkHour(o.StartHour, "start_hour"); err != nil {
			return err
		}
		if err := checkHour(o.EndHour, "end_hour"); err != nil {
			return err
		}
		if o.EndHour < o.StartHour {
			return fmt.Errorf("%w: end_hour before start_hour", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: hour or hour range", ErrMissingField)
	}

	return nil
}

func checkDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidValue, s)
	}
	return nil
}

func checkHour(h int, field string) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("%w: %s must be between 0 and 23", ErrInvalidValue, field)
	}
	return nil
}
