package realtime

import "sync"

// TypingHub nyimpen siapa lagi ngetik di session mana. Murni in-memory,
// tidak pernah dipersist. Wajib dibersihkan waktu koneksi putus supaya
// indikator typing tidak nyangkut.
type TypingHub struct {
	mu       sync.Mutex
	sessions map[int64]map[string]bool
}

func NewTypingHub() *TypingHub {
	return &TypingHub{
		sessions: make(map[int64]map[string]bool),
	}
}

var Typing = NewTypingHub()

// Set update status typing satu user dan balikin daftar user lain yang
// masih ngetik di session yang sama (buat broadcast typing_status).
func (h *TypingHub) Set(chatID int64, username string, isTyping bool) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	users, ok := h.sessions[chatID]
	if !ok {
		users = make(map[string]bool)
		h.sessions[chatID] = users
	}

	if isTyping {
		users[username] = true
	} else {
		delete(users, username)
	}
	if len(users) == 0 {
		delete(h.sessions, chatID)
	}

	return h.othersLocked(chatID, username)
}

// ClearUser hapus user dari semua session yang dia sentuh — dipanggil waktu
// koneksi chat putus (normal maupun abrupt). Balikin session yang berubah
// supaya caller bisa broadcast typing_status terbaru.
func (h *TypingHub) ClearUser(username string, chatIDs []int64) map[int64][]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := make(map[int64][]string)
	for _, chatID := range chatIDs {
		users, ok := h.sessions[chatID]
		if !ok || !users[username] {
			continue
		}
		delete(users, username)
		if len(users) == 0 {
			delete(h.sessions, chatID)
		}
		changed[chatID] = h.othersLocked(chatID, username)
	}
	return changed
}

// Others daftar user yang lagi ngetik selain username.
func (h *TypingHub) Others(chatID int64, username string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.othersLocked(chatID, username)
}

func (h *TypingHub) othersLocked(chatID int64, username string) []string {
	others := []string{}
	for u := range h.sessions[chatID] {
		if u != username {
			others = append(others, u)
		}
	}
	return others
}
