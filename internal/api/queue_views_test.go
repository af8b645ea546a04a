package api

import "testing"

func TestSortQueueItemsNewestFirst(t *testing.T) {
	items := []QueueItem{
		{ID: 1, CreatedAt: "2026-03-10T08:00:00Z"},
		{ID: 3, CreatedAt: "2026-03-12T08:00:00Z"},
		{ID: 2, CreatedAt: "2026-03-11T08:00:00Z"},
	}

	sorted := SortQueueItemsNewestFirst(items)
	if len(sorted) != 3 {
		t.Fatalf("len = %d, want 3", len(sorted))
	}
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected order: %d, %d, %d", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if items[0].ID != 1 {
		t.Fatal("expected input slice to stay untouched")
	}
}

func TestSortQueueItemsNewestFirstBreaksTiesByID(t *testing.T) {
	items := []QueueItem{
		{ID: 5, CreatedAt: "2026-03-10T08:00:00Z"},
		{ID: 9, CreatedAt: "2026-03-10T08:00:00Z"},
		{ID: 7, CreatedAt: ""},
	}

	sorted := SortQueueItemsNewestFirst(items)
	if sorted[0].ID != 9 || sorted[1].ID != 5 {
		t.Fatalf("expected tie broken by ID: %d, %d", sorted[0].ID, sorted[1].ID)
	}
	if sorted[2].ID != 7 {
		t.Fatalf("expected unparsable timestamp last, got %d", sorted[2].ID)
	}
}

func TestSortQueueItemsNewestFirstEmpty(t *testing.T) {
	if got := SortQueueItemsNewestFirst(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestParseQueueTime(t *testing.T) {
	if ts := ParseQueueTime("2026-03-14T09:26:53.000Z"); ts.IsZero() {
		t.Fatal("expected millisecond timestamp to parse")
	}
	if ts := ParseQueueTime("not a time"); !ts.IsZero() {
		t.Fatalf("expected zero time, got %v", ts)
	}
}
