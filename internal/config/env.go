// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays TVG2X_* environment variables onto the options. Env
// sits between the config file and explicit CLI flags in precedence.
func (o *Options) ApplyEnv() {
	if v := os.Getenv("TVG2X_PLATFORM"); v != "" {
		o.Platform = v
	}
	if v := os.Getenv("TVG2X_REGION"); v != "" {
		o.Region = v
	}
	if v := os.Getenv("TVG2X_CACHE_DIR"); v != "" {
		o.CacheDir = v
	}
	if v := os.Getenv("TVG2X_TIMEZONE"); v != "" {
		o.Timezone = v
	}
	if v := os.Getenv("TVG2X_LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := os.Getenv("TVG2X_CACHE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.CacheTTLSeconds = n
		}
	}
	if v := os.Getenv("TVG2X_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.TimeoutSeconds = n
		}
	}
}
