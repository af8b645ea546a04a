package testsupport

import (
	"context"
	"testing"

	"vellum/internal/config"
	"vellum/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewContract enqueues a contract item for tests using the provided store.
func NewContract(t testing.TB, store *queue.Store, series, templateID, requestJSON string) *queue.Item {
	t.Helper()

	item, err := store.NewContract(context.Background(), series, templateID, requestJSON)
	if err != nil {
		t.Fatalf("store.NewContract: %v", err)
	}
	return item
}
