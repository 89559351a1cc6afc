// SPDX-License-Identifier: MIT

package guide

import "github.com/guidepipe/tvg2x/internal/tvguide"

// MergedListing is the deduplicated union of all successful fetch units:
// channels unique by pa_id in first-seen order, each channel's schedules
// unique by (channel, start_at).
type MergedListing struct {
	Channels []tvguide.Channel
}

// scheduleKey is the programme identity used for cross-unit deduplication.
// Adjacent hour windows both report a programme spanning their boundary;
// the first occurrence wins.
type scheduleKey struct {
	channel string
	startAt string
}

type merger struct {
	order    []string
	channels map[string]*tvguide.Channel
	seen     map[scheduleKey]struct{}
}

func newMerger() *merger {
	return &merger{
		channels: make(map[string]*tvguide.Channel),
		seen:     make(map[scheduleKey]struct{}),
	}
}

func (m *merger) add(channels []tvguide.Channel) {
	for _, ch := range channels {
		existing, ok := m.channels[ch.PaID]
		if !ok {
			cp := ch
			cp.Schedules = nil
			m.channels[ch.PaID] = &cp
			m.order = append(m.order, ch.PaID)
			existing = &cp
		} else {
			// First occurrence wins for the channel itself; later units may
			// only refill optional fields that were missing.
			if existing.Slug == "" {
				existing.Slug = ch.Slug
			}
			if existing.LogoURL == "" {
				existing.LogoURL = ch.LogoURL
			}
			if existing.EPG == "" {
				existing.EPG = ch.EPG
			}
		}

		for _, sched := range ch.Schedules {
			key := scheduleKey{channel: ch.PaID, startAt: sched.StartAt}
			if _, dup := m.seen[key]; dup {
				continue
			}
			m.seen[key] = struct{}{}
			existing.Schedules = append(existing.Schedules, sched)
		}
	}
}

func (m *merger) listing() *MergedListing {
	out := make([]tvguide.Channel, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.channels[id])
	}
	return &MergedListing{Channels: out}
}
