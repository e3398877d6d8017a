package realtime

import (
	"sort"
	"testing"
)

func TestTypingSetAndOthers(t *testing.T) {
	h := NewTypingHub()

	others := h.Set(42, "alice", true)
	if len(others) != 0 {
		t.Errorf("others = %v, mau kosong", others)
	}

	others = h.Set(42, "bob", true)
	if len(others) != 1 || others[0] != "alice" {
		t.Errorf("others = %v, mau [alice]", others)
	}

	// Pemanggil tidak pernah masuk daftarnya sendiri
	got := h.Others(42, "alice")
	if len(got) != 1 || got[0] != "bob" {
		t.Errorf("Others = %v, mau [bob]", got)
	}
}

func TestTypingStopClearsUser(t *testing.T) {
	h := NewTypingHub()

	h.Set(7, "alice", true)
	h.Set(7, "alice", false)

	if got := h.Others(7, "nobody"); len(got) != 0 {
		t.Errorf("masih ada yang ngetik setelah stop: %v", got)
	}
}

func TestTypingClearUserOnDisconnect(t *testing.T) {
	h := NewTypingHub()

	h.Set(1, "alice", true)
	h.Set(2, "alice", true)
	h.Set(2, "bob", true)

	changed := h.ClearUser("alice", []int64{1, 2, 99})

	if len(changed) != 2 {
		t.Fatalf("changed = %v, mau 2 session", changed)
	}
	if len(changed[1]) != 0 {
		t.Errorf("session 1 masih punya typing: %v", changed[1])
	}
	if len(changed[2]) != 1 || changed[2][0] != "bob" {
		t.Errorf("session 2 = %v, mau [bob]", changed[2])
	}
}

func TestTypingMultipleUsers(t *testing.T) {
	h := NewTypingHub()

	h.Set(5, "a", true)
	h.Set(5, "b", true)
	h.Set(5, "c", true)

	got := h.Others(5, "b")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Others = %v, mau [a c]", got)
	}
}
