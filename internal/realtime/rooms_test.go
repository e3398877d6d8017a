package realtime

import "testing"

func drain(c *RoomClient) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRoomBroadcastToMembers(t *testing.T) {
	h := NewRoomHub()

	a := NewRoomClient("a")
	b := NewRoomClient("b")
	outside := NewRoomClient("c")

	h.Join("42", a)
	h.Join("42", b)
	h.Join("lain", outside)

	h.Broadcast("42", []byte("hi"), nil)

	if got := drain(a); len(got) != 1 || string(got[0]) != "hi" {
		t.Errorf("a dapat %v, mau satu pesan hi", got)
	}
	if got := drain(b); len(got) != 1 {
		t.Errorf("b dapat %d pesan, mau 1", len(got))
	}
	if got := drain(outside); len(got) != 0 {
		t.Errorf("room lain ikut dapat pesan: %v", got)
	}
}

func TestRoomBroadcastExcept(t *testing.T) {
	h := NewRoomHub()

	sender := NewRoomClient("sender")
	other := NewRoomClient("other")
	h.Join("9", sender)
	h.Join("9", other)

	h.Broadcast("9", []byte("typing"), sender)

	if got := drain(sender); len(got) != 0 {
		t.Error("pengirim ikut dapat broadcast except")
	}
	if got := drain(other); len(got) != 1 {
		t.Error("anggota lain tidak dapat broadcast")
	}
}

func TestRoomLeaveAll(t *testing.T) {
	h := NewRoomHub()

	c := NewRoomClient("x")
	h.Join("1", c)
	h.Join("2", c)
	h.Join(AgentsRoom, c)

	h.LeaveAll(c)

	if h.RoomSize("1") != 0 || h.RoomSize("2") != 0 || h.RoomSize(AgentsRoom) != 0 {
		t.Error("masih ada keanggotaan setelah LeaveAll")
	}

	h.Broadcast("1", []byte("late"), nil)
	if got := drain(c); len(got) != 0 {
		t.Error("client yang sudah keluar masih dapat pesan")
	}
}

func TestRoomEmptyRoomRemoved(t *testing.T) {
	h := NewRoomHub()

	c := NewRoomClient("solo")
	h.Join("7", c)
	h.Leave("7", c)

	h.mu.Lock()
	_, exists := h.rooms["7"]
	h.mu.Unlock()
	if exists {
		t.Error("room kosong tidak dihapus dari tabel")
	}
}
