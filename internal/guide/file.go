// SPDX-License-Identifier: MIT

package guide

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/guidepipe/tvg2x/internal/tvguide"
)

// Listing files are bounded the same way API responses are.
const maxListingBytes = 50 * 1024 * 1024

// FromFile loads a previously saved listings document and treats it as a
// single already-fetched unit. The document must be a JSON array of channel
// records; it is still run through the merger so the output honours the same
// uniqueness invariants as an API run.
func FromFile(path string) (*MergedListing, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("guide: open listing file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(f, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("guide: read listing file: %w", err)
	}

	var channels []tvguide.Channel
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, fmt.Errorf("guide: listing file %s is not a channel array: %w", path, err)
	}

	m := newMerger()
	m.add(channels)
	return m.listing(), nil
}
