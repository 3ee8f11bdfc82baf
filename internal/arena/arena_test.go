package arena

import "testing"

func TestInsertGet(t *testing.T) {
	a := New[string]()
	id := a.Insert("hello")
	if id == NoID {
		t.Fatal("Insert returned NoID")
	}
	got, ok := a.Get(id)
	if !ok || got != "hello" {
		t.Fatalf("Get(%v) = %q, %v", id, got, ok)
	}
}

func TestInsertWithID(t *testing.T) {
	a := New[int]()
	var captured Id
	id := a.InsertWithID(func(id Id) int {
		captured = id
		return int(id)
	})
	if captured != id {
		t.Fatalf("callback saw id %v, Insert returned %v", captured, id)
	}
	got, _ := a.Get(id)
	if Id(got) != id {
		t.Fatalf("stored value %d does not match id %v", got, id)
	}
}

func TestRemoveAndReuse(t *testing.T) {
	a := New[string]()
	id1 := a.Insert("a")
	id2 := a.Insert("b")

	old, ok := a.Remove(id1)
	if !ok || old != "a" {
		t.Fatalf("Remove(id1) = %q, %v", old, ok)
	}
	if a.Contains(id1) {
		t.Fatal("id1 still live after Remove")
	}

	id3 := a.Insert("c")
	if id3 != id1 {
		t.Fatalf("expected slot reuse: id3=%v, id1=%v", id3, id1)
	}
	if !a.Contains(id3) || a.Contains(id1) != a.Contains(id3) {
		t.Fatal("reused id not live")
	}
	// id2 must still be untouched and never alias id3.
	got, ok := a.Get(id2)
	if !ok || got != "b" {
		t.Fatalf("id2 corrupted: %q, %v", got, ok)
	}
}

func TestGetMutMutates(t *testing.T) {
	a := New[int]()
	id := a.Insert(1)
	if p := a.GetMut(id); p != nil {
		*p = 42
	}
	got, _ := a.Get(id)
	if got != 42 {
		t.Fatalf("GetMut mutation lost: got %d", got)
	}
}

func TestContainsNoID(t *testing.T) {
	a := New[int]()
	if a.Contains(NoID) {
		t.Fatal("NoID must never be contained")
	}
}

func TestLen(t *testing.T) {
	a := New[int]()
	if a.Len() != 0 {
		t.Fatalf("new arena Len() = %d, want 0", a.Len())
	}
	id1 := a.Insert(1)
	a.Insert(2)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	a.Remove(id1)
	if a.Len() != 1 {
		t.Fatalf("Len() after Remove = %d, want 1", a.Len())
	}
}
