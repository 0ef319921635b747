// Package workset computes the queue of candidate IDs still needing
// processing from the full candidate list, the completed set, and the
// recent-failure set. The resolver is a pure read-only pass.
package workset
