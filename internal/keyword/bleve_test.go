package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "keyword"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	docs := map[string]*models.Document{
		"d1": {Filename: "vacation.md", Content: "Employees receive 15 days of paid vacation.", Category: "hr"},
		"d2": {Filename: "vpn.md", Content: "Connect to the VPN before accessing internal systems.", Category: "technical"},
	}
	for id, d := range docs {
		if err := idx.Index(ctx, id, d); err != nil {
			t.Fatalf("Index %s: %v", id, err)
		}
	}

	n, err := idx.DocCount()
	if err != nil || n != 2 {
		t.Fatalf("DocCount = %d, %v", n, err)
	}

	hits, err := idx.Search(ctx, "vacation", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "d1" {
		t.Fatalf("Search hits = %+v", hits)
	}
	if hits[0].Filename != "vacation.md" || hits[0].Category != "hr" {
		t.Errorf("hit fields = %+v", hits[0])
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "d1", &models.Document{Filename: "a.md", Content: "expense report process", Category: "hr"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, "d2", &models.Document{Filename: "b.md", Content: "expense report automation", Category: "technical"}); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(ctx, "expense", "technical", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "d2" {
		t.Fatalf("category filter hits = %+v", hits)
	}
}

func TestDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "d1", &models.Document{Filename: "a.md", Content: "onboarding checklist", Category: "hr"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	hits, err := idx.Search(ctx, "onboarding", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("deleted document still found: %+v", hits)
	}
}
