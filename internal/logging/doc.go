// Package logging builds the slog loggers used across groovescan and
// defines the standardized attribute keys shared by all components.
package logging
