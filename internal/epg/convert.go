// SPDX-License-Identifier: MIT

package epg

import (
	"fmt"
	"sort"
	"time"

	"github.com/guidepipe/tvg2x/internal/tvguide"
)

const (
	sourceInfoName   = "TV Guide API"
	generatorName    = "tvg2x/1.0"
	xmltvTimeLayout  = "20060102150405 -0700"
	defaultStartWarn = "missing or unparseable start_at"
)

// Options control the conversion.
type Options struct {
	// Location is the output timezone for programme timestamps. Defaults to
	// the process-local zone; inject a fixed zone for deterministic output.
	Location *time.Location

	// Now stamps the document date attribute. Defaults to time.Now.
	Now func() time.Time
}

// Warning describes one programme record that was skipped as a data error.
// The conversion continues past it.
type Warning struct {
	ChannelID string
	Title     string
	StartAt   string
	Reason    string
}

func (w Warning) String() string {
	return fmt.Sprintf("programme %q on channel %s (start_at=%q): %s", w.Title, w.ChannelID, w.StartAt, w.Reason)
}

// Convert maps merged channel records into an XMLTV document. Channels come
// first, each exactly once and in listing order; programmes follow, sorted
// by (start, channel).
func Convert(channels []tvguide.Channel, opts Options) (*TV, []Warning) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	tv := &TV{
		Date:              now().UTC().Format(xmltvTimeLayout),
		SourceInfoName:    sourceInfoName,
		GeneratorInfoName: generatorName,
		Channels:          make([]Channel, 0, len(channels)),
	}

	type entry struct {
		start time.Time
		prog  Programme
	}
	var entries []entry
	var warnings []Warning

	for _, ch := range channels {
		id := ch.ID()
		out := Channel{ID: id, DisplayName: ch.Title}
		if ch.LogoURL != "" {
			out.Icon = &Icon{Src: ch.LogoURL}
		}
		tv.Channels = append(tv.Channels, out)

		for _, sched := range ch.Schedules {
			warn := func(reason string) {
				warnings = append(warnings, Warning{
					ChannelID: id,
					Title:     sched.Title,
					StartAt:   sched.StartAt,
					Reason:    reason,
				})
			}

			if sched.Title == "" {
				warn("missing title")
				continue
			}
			start, err := parseStart(sched.StartAt)
			if err != nil {
				warn(defaultStartWarn)
				continue
			}
			if sched.Duration == nil {
				warn("missing duration")
				continue
			}
			if *sched.Duration < 0 {
				warn(fmt.Sprintf("negative duration %d", *sched.Duration))
				continue
			}
			stop := start.Add(time.Duration(*sched.Duration) * time.Minute)

			prog := Programme{
				Start:   start.In(loc).Format(xmltvTimeLayout),
				Stop:    stop.In(loc).Format(xmltvTimeLayout),
				Channel: id,
				Title:   sched.Title,
			}
			if sched.Type != "" {
				prog.Category = sched.Type
			}
			if sched.ImageURL != "" {
				prog.Icon = &Icon{Src: sched.ImageURL}
			}
			if sched.New {
				prog.New = &struct{}{}
			}
			entries = append(entries, entry{start: start, prog: prog})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].start.Equal(entries[j].start) {
			return entries[i].start.Before(entries[j].start)
		}
		return entries[i].prog.Channel < entries[j].prog.Channel
	})

	tv.Programmes = make([]Programme, 0, len(entries))
	for _, e := range entries {
		tv.Programmes = append(tv.Programmes, e.prog)
	}
	return tv, warnings
}

// parseStart accepts the API's UTC ISO-8601 instants, with either a Z or a
// numeric offset suffix.
func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty start_at")
	}
	return time.Parse(time.RFC3339, s)
}
