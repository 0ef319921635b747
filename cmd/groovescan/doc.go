// Command groovescan drives the audio dataset pipeline from the
// terminal: run processes outstanding candidates, status reports run
// history and failures, and config manages the TOML configuration.
package main
