// SPDX-License-Identifier: MIT

package config

import "errors"

var (
	// ErrMissingInput means neither an input file nor API parameters were given.
	ErrMissingInput = errors.New("config: no input source")

	// ErrConflictingOptions marks mutually exclusive settings.
	ErrConflictingOptions = errors.New("config: conflicting options")

	// ErrMissingField marks a required field that was left empty.
	ErrMissingField = errors.New("config: missing required field")

	// ErrInvalidValue marks an out-of-range or malformed value.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrUnknownConfigField classifies strict YAML parse failures caused by
	// unknown keys. Use errors.Is instead of string matching.
	ErrUnknownConfigField = errors.New("config: unknown config field")
)
