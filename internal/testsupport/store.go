package testsupport

import (
	"testing"

	"groovescan/internal/config"
	"groovescan/internal/trackstore"
)

// MustOpenStore opens a trackstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *trackstore.Store {
	t.Helper()

	store, err := trackstore.Open(cfg)
	if err != nil {
		t.Fatalf("trackstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
