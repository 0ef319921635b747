// Package pipeline orchestrates a full acquisition-and-analysis run:
// resolve the outstanding work set, fetch audio for each candidate, cut a
// centered segment, compute its features, and persist the outcome.
//
// The stages form a chain of worker pools connected by bounded channels.
// Acquisition width is network-bound and configured independently of
// analysis width, which defaults to the core count. All results and
// failures funnel through a single collector goroutine so the CSV sink
// and the state store never see concurrent writers.
package pipeline
