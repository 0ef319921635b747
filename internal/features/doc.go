// Package features defines the descriptor row produced for each analyzed
// track and the harmonic wheel notation used by downstream consumers.
package features
