package realtime

import (
	"context"
	"time"
)

// Parameter long-poll status order. Interval 2 detik polling DB; timeout
// request di-clamp ke MaxTrackTimeout oleh handler.
const (
	TrackPollInterval   = 2 * time.Second
	DefaultTrackTimeout = 30 * time.Second
	MaxTrackTimeout     = 60 * time.Second
)

// ClampTrackTimeout normalisasi detik timeout dari query param.
func ClampTrackTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultTrackTimeout
	}
	if d := time.Duration(seconds) * time.Second; d <= MaxTrackTimeout {
		return d
	}
	return MaxTrackTimeout
}

// WaitForStatusChange nge-block sampai status entity berubah atau timeout.
// fetch dipanggil ulang tiap interval; error dari fetch (mis. order hilang)
// langsung diteruskan dan beda dari timeout biasa.
//
// Aturan return langsung, urut:
//  1. lastStatus nil (panggilan pertama client) -> changed
//  2. status sekarang "ready" dan client belum tahu -> changed (prioritas domain)
//  3. status sekarang beda dari lastStatus -> changed
//
// Timeout: snapshot terakhir, changed=false. Context batal (client putus)
// diperlakukan sama dengan timeout — koneksi toh sudah tidak ada.
func WaitForStatusChange(ctx context.Context, fetch func() (string, error), lastStatus *string, timeout time.Duration) (string, bool, error) {
	current, err := fetch()
	if err != nil {
		return "", false, err
	}

	if lastStatus == nil {
		return current, true, nil
	}
	if current == "ready" && *lastStatus != "ready" {
		return current, true, nil
	}
	if current != *lastStatus {
		return current, true, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(TrackPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			current, err = fetch()
			if err != nil {
				return "", false, err
			}
			if current != *lastStatus {
				return current, true, nil
			}
		case <-deadline.C:
			return current, false, nil
		case <-ctx.Done():
			return current, false, nil
		}
	}
}
