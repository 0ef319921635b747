// Package dataset reads the candidate dataset: a JSON list of mixes whose
// tracklists reference externally hosted tracks by opaque identifier.
package dataset
