// Package ytdlp wraps the yt-dlp binary for fetching best-available audio
// from hosted video identifiers.
package ytdlp
