// Package config loads, normalizes, and validates groovescan configuration
// from a TOML file, layering user values over repository defaults.
package config
