package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func productA() *Product {
	return &Product{ID: "a", Name: "Widget", Price: decimal.NewFromFloat(10.00)}
}

func productB() *Product {
	return &Product{ID: "b", Name: "Gadget", Price: decimal.NewFromFloat(25.00)}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 2)
	s.AddItem(productA(), 3)

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line item after merge, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddItemClampsQuantityToOne(t *testing.T) {
	for _, qty := range []int{0, -3} {
		s := NewStore()
		s.AddItem(productA(), qty)

		items := s.Items()
		if len(items) != 1 || items[0].Quantity != 1 {
			t.Fatalf("expected quantity clamped to 1 for input %d, got %+v", qty, items)
		}
	}
}

func TestAddItemNilProductIsNoOp(t *testing.T) {
	s := NewStore()
	s.AddItem(nil, 2)
	if len(s.Items()) != 0 {
		t.Fatal("expected nil product add to be a no-op")
	}
}

func TestAddItemSnapshotsUnitPrice(t *testing.T) {
	s := NewStore()
	p := productA()
	s.AddItem(p, 1)

	p.Price = decimal.NewFromFloat(99.99)

	items := s.Items()
	if !items[0].UnitPrice.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("expected unit price snapshotted at add time, got %s", items[0].UnitPrice)
	}
}

func TestSetQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, qty := range []int{0, -5} {
		s := NewStore()
		s.AddItem(productA(), 2)
		s.SetQuantity("a", qty)

		if len(s.Items()) != 0 {
			t.Fatalf("expected SetQuantity(%d) to remove the item", qty)
		}
	}
}

func TestSetQuantityIsAbsolute(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 2)
	s.SetQuantity("a", 7)

	items := s.Items()
	if items[0].Quantity != 7 {
		t.Fatalf("expected absolute quantity 7, got %d", items[0].Quantity)
	}
}

func TestSetQuantityAbsentIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 2)
	s.SetQuantity("missing", 4)

	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected untouched cart, got %+v", items)
	}
}

func TestRemoveItemAbsentIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 1)
	s.RemoveItem("missing")

	if len(s.Items()) != 1 {
		t.Fatal("expected cart untouched by removing an absent id")
	}
}

func TestTotalsScenario(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 2) // 2 x $10.00
	s.AddItem(productB(), 1) // 1 x $25.00

	if got := s.TotalItemCount(); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
	if got := s.TotalPrice(); !got.Equal(decimal.NewFromFloat(45.00)) {
		t.Fatalf("expected total 45.00, got %s", got)
	}

	s.SetQuantity("a", 5)
	if got := s.TotalItemCount(); got != 6 {
		t.Fatalf("expected count 6 after SetQuantity, got %d", got)
	}
	if got := s.TotalPrice(); !got.Equal(decimal.NewFromFloat(75.00)) {
		t.Fatalf("expected total 75.00 after SetQuantity, got %s", got)
	}

	s.RemoveItem("b")
	if got := s.TotalItemCount(); got != 5 {
		t.Fatalf("expected count 5 after remove, got %d", got)
	}
	if got := s.TotalPrice(); !got.Equal(decimal.NewFromFloat(50.00)) {
		t.Fatalf("expected total 50.00 after remove, got %s", got)
	}
}

func TestItemsPreserveInsertionOrder(t *testing.T) {
	s := NewStore()
	s.AddItem(productB(), 1)
	s.AddItem(productA(), 1)

	items := s.Items()
	if items[0].ProductID != "b" || items[1].ProductID != "a" {
		t.Fatalf("expected insertion order b,a got %+v", items)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 1)

	items := s.Items()
	items[0].Quantity = 99

	if s.Items()[0].Quantity != 1 {
		t.Fatal("mutating the returned slice must not affect the store")
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.AddItem(productA(), 2)
	s.AddItem(productB(), 1)
	s.Clear()

	if len(s.Items()) != 0 || s.TotalItemCount() != 0 {
		t.Fatal("expected empty cart after Clear")
	}
	if !s.TotalPrice().Equal(decimal.Zero) {
		t.Fatal("expected zero total after Clear")
	}
}

func TestSubscribeNotifiesSynchronously(t *testing.T) {
	s := NewStore()

	var observed []LineItem
	calls := 0
	unsubscribe := s.Subscribe(func(items []LineItem) {
		observed = items
		calls++
	})

	s.AddItem(productA(), 2)
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
	if len(observed) != 1 || observed[0].Quantity != 2 {
		t.Fatalf("listener saw stale state: %+v", observed)
	}

	// A query inside the same logical step must see the mutation already.
	countSeen := -1
	unsubscribeSecond := s.Subscribe(func([]LineItem) {
		countSeen = s.TotalItemCount()
	})
	s.SetQuantity("a", 4)
	if countSeen != 4 {
		t.Fatalf("listener could not read fresh state from the store, saw %d", countSeen)
	}
	unsubscribeSecond()

	unsubscribe()
	s.Clear()
	if calls != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %d calls", calls)
	}
}

func TestReplaceDropsInvalidEntries(t *testing.T) {
	s := NewStore()
	s.Replace([]LineItem{
		{ProductID: "a", Name: "Widget", UnitPrice: decimal.NewFromFloat(10), Quantity: 2},
		{ProductID: "", Quantity: 1},
		{ProductID: "a", Quantity: 9}, // duplicate id
		{ProductID: "b", Name: "Gadget", UnitPrice: decimal.NewFromFloat(25), Quantity: 0},
	})

	items := s.Items()
	if len(items) != 1 || items[0].ProductID != "a" || items[0].Quantity != 2 {
		t.Fatalf("expected only the first valid entry kept, got %+v", items)
	}
}
