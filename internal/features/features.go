package features

import (
	"errors"
	"fmt"
	"strings"
)

// Row is one completed feature set for a track. Rows are append-only; the
// result sink guarantees at most one row per track ID in the dataset.
type Row struct {
	ID          string
	Tempo       int
	Key         string
	KeyNotation string
	Energy      float64
}

// Columns is the output dataset header, in write order.
var Columns = []string{"id", "tempo", "key", "key_notation", "energy"}

// Validate checks the row against the dataset contract.
func (r Row) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("feature row: empty id")
	}
	if r.Tempo <= 0 {
		return fmt.Errorf("feature row %s: tempo must be positive, got %d", r.ID, r.Tempo)
	}
	if r.Energy < 0 || r.Energy > 1 {
		return fmt.Errorf("feature row %s: energy must be in [0,1], got %g", r.ID, r.Energy)
	}
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("feature row %s: empty key", r.ID)
	}
	if !ValidNotation(r.KeyNotation) {
		return fmt.Errorf("feature row %s: malformed key notation %q", r.ID, r.KeyNotation)
	}
	return nil
}
