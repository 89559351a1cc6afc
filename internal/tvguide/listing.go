// SPDX-License-Identifier: MIT

package tvguide

// Channel is one channel record as returned by the listings API, with its
// nested schedule entries.
type Channel struct {
	PaID      string     `json:"pa_id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug,omitempty"`
	LogoURL   string     `json:"logo_url,omitempty"`
	EPG       string     `json:"epg,omitempty"`
	Schedules []Schedule `json:"schedules"`
}

// ID returns the identifier used for XMLTV channel elements: the slug when
// the API provides one, otherwise the pa_id.
func (c Channel) ID() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.PaID
}

// Schedule is one programme record. Duration is in minutes; a nil Duration
// means the field was absent from the upstream payload.
type Schedule struct {
	PaID     string `json:"pa_id"`
	Title    string `json:"title"`
	Type     string `json:"type,omitempty"`
	StartAt  string `json:"start_at"` // UTC, ISO-8601
	Duration *int   `json:"duration,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	New      bool   `json:"new,omitempty"`
}
