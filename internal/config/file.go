// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML config file over the defaults. Decoding is strict:
// unknown keys fail with ErrUnknownConfigField so typos do not silently
// fall back to defaults.
func LoadFile(path string) (Options, error) {
	opts := Defaults()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return opts, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return opts, fmt.Errorf("%w: %s: %v", ErrUnknownConfigField, path, err)
		}
		return opts, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return opts, nil
}
