package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func snapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cart_snapshot.json")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := snapshotPath(t)
	files := NewFileStore(path)

	items := []LineItem{
		{ProductID: "a", Name: "Widget", UnitPrice: decimal.NewFromFloat(10.00), ImageRef: "widget.png", Quantity: 2},
		{ProductID: "b", Name: "Gadget", UnitPrice: decimal.NewFromFloat(25.00), Quantity: 1},
	}
	files.Save(items)

	restored := NewFileStore(path).Load()
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored items, got %d", len(restored))
	}
	for i := range items {
		if restored[i].ProductID != items[i].ProductID ||
			restored[i].Name != items[i].Name ||
			restored[i].ImageRef != items[i].ImageRef ||
			restored[i].Quantity != items[i].Quantity ||
			!restored[i].UnitPrice.Equal(items[i].UnitPrice) {
			t.Fatalf("item %d changed across round trip: %+v vs %+v", i, restored[i], items[i])
		}
	}

	store := NewStore()
	store.Replace(restored)
	if store.TotalItemCount() != 3 {
		t.Fatalf("expected restored count 3, got %d", store.TotalItemCount())
	}
	if !store.TotalPrice().Equal(decimal.NewFromFloat(45.00)) {
		t.Fatalf("expected restored total 45.00, got %s", store.TotalPrice())
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	files := NewFileStore(snapshotPath(t))
	if items := files.Load(); items != nil {
		t.Fatalf("expected nil for missing snapshot, got %+v", items)
	}
}

func TestLoadCorruptSnapshotFailsOpenAndDiscards(t *testing.T) {
	path := snapshotPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	files := NewFileStore(path)
	if items := files.Load(); items != nil {
		t.Fatalf("expected nil for corrupt snapshot, got %+v", items)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected corrupt snapshot file to be removed")
	}
}

func TestLoadUnsupportedVersionDiscards(t *testing.T) {
	path := snapshotPath(t)
	if err := os.WriteFile(path, []byte(`{"version":2,"items":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	files := NewFileStore(path)
	if items := files.Load(); items != nil {
		t.Fatalf("expected nil for unsupported version, got %+v", items)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected unsupported snapshot file to be removed")
	}
}

func TestMirrorRestoresBeforeSubscribing(t *testing.T) {
	path := snapshotPath(t)
	files := NewFileStore(path)
	files.Save([]LineItem{
		{ProductID: "a", Name: "Widget", UnitPrice: decimal.NewFromFloat(10.00), Quantity: 2},
	})

	store := NewStore()
	unsubscribe := Mirror(store, files)
	defer unsubscribe()

	items := store.Items()
	if len(items) != 1 || items[0].ProductID != "a" || items[0].Quantity != 2 {
		t.Fatalf("expected snapshot restored into store, got %+v", items)
	}
}

func TestMirrorWritesThroughOnMutation(t *testing.T) {
	path := snapshotPath(t)
	store := NewStore()
	unsubscribe := Mirror(store, NewFileStore(path))
	defer unsubscribe()

	store.AddItem(&Product{ID: "a", Name: "Widget", Price: decimal.NewFromFloat(10.00)}, 2)
	store.SetQuantity("a", 5)

	restored := NewFileStore(path).Load()
	if len(restored) != 1 || restored[0].Quantity != 5 {
		t.Fatalf("expected written-through snapshot with quantity 5, got %+v", restored)
	}

	store.Clear()
	restored = NewFileStore(path).Load()
	if len(restored) != 0 {
		t.Fatalf("expected empty snapshot after clear, got %+v", restored)
	}
}
