package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Track references one externally hosted track inside a mix tracklist.
type Track struct {
	ID string `json:"id"`
}

// Mix is one entry in the candidate dataset.
type Mix struct {
	Tracklist []Track `json:"tracklist"`
}

// LoadCandidates extracts the deduplicated candidate ID list from the
// dataset file, preserving first-occurrence order. Tracks without an ID
// are skipped.
func LoadCandidates(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var mixes []Mix
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&mixes); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, mix := range mixes {
		for _, track := range mix.Tracklist {
			id := strings.TrimSpace(track.ID)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
