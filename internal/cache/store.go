// SPDX-License-Identifier: MIT

// Package cache provides a disk-backed TTL cache for listings payloads,
// one file per fetch unit.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xlog "github.com/guidepipe/tvg2x/internal/log"
	"github.com/guidepipe/tvg2x/internal/tvguide"
)

// envelope is the on-disk entry format. The fingerprint is verified on read
// so a torn or foreign file is never accepted as a valid entry.
type envelope struct {
	Fingerprint string          `json:"fingerprint"`
	StoredAt    time.Time       `json:"stored_at"`
	TTLSeconds  int64           `json:"ttl_seconds"`
	Payload     json.RawMessage `json:"payload"`
}

// Stats summarises the cache directory without mutating it.
type Stats struct {
	Entries    int
	TotalBytes int64
	OldestAge  time.Duration
	NewestAge  time.Duration
}

// Store is the disk-backed implementation. It is constructed per run from a
// configured root directory and holds no global state.
type Store struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// New creates the cache directory if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	return &Store{
		dir:    dir,
		now:    time.Now,
		logger: xlog.WithComponent("cache"),
	}, nil
}

// Fingerprint returns the stable, collision-resistant cache fingerprint for
// a unit. It must not change across runs or platforms: cache reuse between
// invocations depends on it.
func Fingerprint(u tvguide.Unit) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%d", u.Platform, u.Region, u.Date, u.Hour))
	return hex.EncodeToString(sum[:])
}

// path builds the entry file name: human-readable tuple prefix plus a short
// fingerprint so unusual platform or region strings cannot collide.
func (s *Store) path(u tvguide.Unit) string {
	name := fmt.Sprintf("%s_%s_%s_%02d-%s.json",
		sanitize(u.Platform), sanitize(u.Region), sanitize(u.Date), u.Hour, Fingerprint(u)[:12])
	return filepath.Join(s.dir, name)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Get returns the cached payload for the unit, or ok=false when no entry
// exists, the entry is corrupt, or its age exceeds the TTL it was stored
// with. Stale and corrupt entries are lazily removed.
func (s *Store) Get(unit tvguide.Unit) ([]byte, bool) {
	path := s.path(unit)
	raw, err := os.ReadFile(path) // #nosec G304 -- path is derived from the sanitized unit tuple
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("event", "cache.read_error").Stringer("unit", unit).
				Msg("cache read failed, treating as miss")
		}
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Fingerprint != Fingerprint(unit) {
		s.logger.Warn().Str("event", "cache.corrupt_entry").Stringer("unit", unit).Str("path", path).
			Msg("discarding corrupt cache entry")
		_ = os.Remove(path)
		return nil, false
	}

	if age := s.now().Sub(env.StoredAt); age > time.Duration(env.TTLSeconds)*time.Second {
		_ = os.Remove(path)
		return nil, false
	}
	return env.Payload, true
}

// Put writes a cache entry for the unit, overwriting any prior entry. The
// write is atomic (pending file + rename) so a crash mid-write never leaves
// a partial entry that Get would accept.
func (s *Store) Put(unit tvguide.Unit, payload []byte, ttl time.Duration) error {
	env := envelope{
		Fingerprint: Fingerprint(unit),
		StoredAt:    s.now(),
		TTLSeconds:  int64(ttl / time.Second),
		Payload:     json.RawMessage(payload),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s: %w", unit, err)
	}

	pf, err := renameio.NewPendingFile(s.path(unit))
	if err != nil {
		return fmt.Errorf("cache: create pending entry for %s: %w", unit, err)
	}
	defer func() {
		_ = pf.Cleanup()
	}()
	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("cache: write entry for %s: %w", unit, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("cache: replace entry for %s: %w", unit, err)
	}
	return nil
}

// Clear deletes all entries and reports how many were removed.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("cache: read directory: %w", err)
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Stats reports entry count, total size, and the age spread of entries.
func (s *Store) Stats() (Stats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("cache: read directory: %w", err)
	}
	now := s.now()
	var stats Stats
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		age := now.Sub(info.ModTime())
		if stats.Entries == 0 || age > stats.OldestAge {
			stats.OldestAge = age
		}
		if stats.Entries == 0 || age < stats.NewestAge {
			stats.NewestAge = age
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}
