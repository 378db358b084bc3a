package inventory

import "testing"

func TestCollectionReplaceOnlyKnownItems(t *testing.T) {
	a := Item{ID: "a", Status: StatusInStock}
	b := Item{ID: "b", Status: StatusInStock}
	c := NewCollection(a, b)

	updated := a
	updated.Status = StatusLoanedOut
	if !c.Replace(updated) {
		t.Fatal("Replace rejected a known item")
	}
	got, _ := c.Get("a")
	if got.Status != StatusLoanedOut {
		t.Fatalf("item a status = %s after replace", got.Status)
	}

	if c.Replace(Item{ID: "zzz"}) {
		t.Fatal("Replace accepted an unknown item")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d after rejected replace", c.Len())
	}
}

func TestCollectionPrependNewestFirst(t *testing.T) {
	c := NewCollection(Item{ID: "old"})
	c.Prepend(Item{ID: "new-1"}, Item{ID: "new-2"})

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("Len = %d, want 3", len(items))
	}
	if items[0].ID != "new-1" || items[1].ID != "new-2" || items[2].ID != "old" {
		t.Fatalf("order = %s, %s, %s", items[0].ID, items[1].ID, items[2].ID)
	}

	// Re-prepending an existing id is a no-op.
	c.Prepend(Item{ID: "old"})
	if c.Len() != 3 {
		t.Fatalf("Len = %d after duplicate prepend", c.Len())
	}
}

func TestNewCollectionDropsDuplicateIDs(t *testing.T) {
	c := NewCollection(Item{ID: "a", Remarks: "first"}, Item{ID: "a", Remarks: "second"})
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	got, _ := c.Get("a")
	if got.Remarks != "first" {
		t.Fatalf("kept %q, want the first occurrence", got.Remarks)
	}
}
