package catalog

import "testing"

func TestCategoriesOrdered(t *testing.T) {
	want := []string{"Закуски", "Основные", "Десерты"}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestItemsLookup(t *testing.T) {
	items, ok := Items("Десерты")
	if !ok {
		t.Fatal("expected category to exist")
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Name != "Тирамису" || items[0].Price != 380 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}

	if _, ok := Items("Напитки"); ok {
		t.Fatal("unknown category must not resolve")
	}
}

func TestItemsCopyIsolated(t *testing.T) {
	items, _ := Items("Закуски")
	items[0].Price = 1

	again, _ := Items("Закуски")
	if again[0].Price != 320 {
		t.Fatalf("menu mutated through returned slice: %+v", again[0])
	}
}
