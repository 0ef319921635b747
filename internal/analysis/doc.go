// Package analysis computes the tempo, key, and energy descriptors for a
// cut audio segment. Segments arrive as mono 16-bit PCM WAV; everything
// here operates on decoded float samples with no shared mutable state, so
// analyses run in parallel safely.
package analysis
