// Package segment cuts a bounded, centered analysis clip out of a raw
// audio artifact using ffmpeg, normalizing it to mono 16-bit PCM WAV so
// the analysis stage decodes a single known format.
package segment
