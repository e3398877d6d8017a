package realtime

import (
	"sync"

	"backend-delivery/internal/logger"
)

// Room "agents" itu tetap; room lain dinamai pakai chat session id.
const AgentsRoom = "agents"

// RoomClient satu koneksi chat yang tergabung di nol atau lebih room.
// Pengiriman lewat Send channel; penulisan ke socket diurus goroutine
// writer si koneksi, bukan hub.
type RoomClient struct {
	ID   string
	Send chan []byte
}

func NewRoomClient(id string) *RoomClient {
	return &RoomClient{
		ID:   id,
		Send: make(chan []byte, subscriberQueueSize),
	}
}

// RoomHub multicast berbasis room untuk chat. Satu lock untuk tabel room
// dan keanggotaan client.
type RoomHub struct {
	mu      sync.Mutex
	rooms   map[string]map[*RoomClient]bool
	members map[*RoomClient]map[string]bool
}

func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms:   make(map[string]map[*RoomClient]bool),
		members: make(map[*RoomClient]map[string]bool),
	}
}

var Rooms = NewRoomHub()

func (h *RoomHub) Join(room string, c *RoomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*RoomClient]bool)
	}
	h.rooms[room][c] = true

	if h.members[c] == nil {
		h.members[c] = make(map[string]bool)
	}
	h.members[c][room] = true
}

func (h *RoomHub) Leave(room string, c *RoomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// LeaveAll dipanggil waktu koneksi putus — semua keanggotaan dilepas dalam
// satu critical section, tidak ada entry yang bocor.
func (h *RoomHub) LeaveAll(c *RoomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.members[c] {
		h.leaveLocked(room, c)
	}
}

func (h *RoomHub) leaveLocked(room string, c *RoomClient) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.members[c]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(h.members, c)
		}
	}
}

// Broadcast kirim payload ke semua anggota room, kecuali except (boleh nil).
// Client yang Send-nya penuh di-skip — sama seperti registry, pengirim tidak
// boleh ikut ngeblok gara-gara satu consumer lambat.
func (h *RoomHub) Broadcast(room string, payload []byte, except *RoomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			logger.WithFields(map[string]interface{}{
				"room":   room,
				"client": c.ID,
			}).Debug("send buffer penuh, pesan di-drop")
		}
	}
}

// RoomSize dipakai buat observability & test.
func (h *RoomHub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
