// SPDX-License-Identifier: MIT

// Package tvguide talks to the tvguide.co.uk listings API: request
// identity, response schema, and a retrying HTTP client.
package tvguide

import "fmt"

// Unit identifies one elementary listings request. It is immutable once
// constructed and doubles as the cache key tuple.
type Unit struct {
	Platform string
	Region   string
	Date     string // calendar day, YYYY-MM-DD
	Hour     int    // 0-23
}

func (u Unit) String() string {
	return fmt.Sprintf("%s_%s_%s_%d", u.Platform, u.Region, u.Date, u.Hour)
}
