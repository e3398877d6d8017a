package helper

import "strings"

// Status order yang dikenal. Transisi TIDAK divalidasi — status apapun boleh
// menggantikan status apapun (penyederhanaan yang disengaja, jangan ditambah
// state machine diam-diam).
var OrderStatuses = []string{"confirmed", "preparing", "ready", "picked_up", "delivered", "cancelled"}

func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// NormalizePriority: nilai di luar enum dipaksa jadi "normal", bukan error.
func NormalizePriority(priority string) string {
	p := strings.TrimSpace(priority)
	switch p {
	case "low", "normal", "high", "urgent":
		return p
	}
	return "normal"
}
