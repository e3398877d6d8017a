package handler

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// quotaWriter nerima n kali flush lalu nolak sisanya, gaya client yang putus
// di tengah stream.
type quotaWriter struct {
	left int
	buf  bytes.Buffer
}

func (q *quotaWriter) Write(p []byte) (int, error) {
	if q.left <= 0 {
		return 0, errors.New("koneksi putus")
	}
	q.left--
	return q.buf.Write(p)
}

func TestTailLocationsQueueBeforeSnapshotNotLost(t *testing.T) {
	// Update yang masuk antrian sebelum snapshot kebaca tetap terkirim;
	// yang identik dengan snapshot di-skip supaya tidak dobel.
	q := make(chan string, 4)
	q <- `{"latitude":-6.2,"longitude":106.8}`
	q <- `{"latitude":-6.3,"longitude":106.9}`
	q <- `{"latitude":-6.4,"longitude":107.0}`
	first := `{"latitude":-6.2,"longitude":106.8}`

	under := &quotaWriter{left: 2}
	w := bufio.NewWriter(under)
	tailLocations(w, q, &first, nil)

	out := under.buf.String()
	if strings.Count(out, `"latitude":-6.2`) != 1 {
		t.Errorf("snapshot harus keluar tepat sekali, output:\n%s", out)
	}
	if !strings.Contains(out, `"latitude":-6.3`) {
		t.Errorf("update di antrian hilang, output:\n%s", out)
	}
	if strings.Contains(out, `"latitude":-6.4`) {
		t.Errorf("write ketiga harusnya kena quota, output:\n%s", out)
	}
}

func TestTailLocationsStopsWhenClientGone(t *testing.T) {
	q := make(chan string, 1)
	q <- `{"latitude":1,"longitude":2}`

	under := &quotaWriter{left: 0}
	w := bufio.NewWriter(under)
	tailLocations(w, q, nil, nil) // harus balik waktu write pertama gagal

	if under.buf.Len() != 0 {
		t.Errorf("tidak boleh ada output setelah koneksi putus, dapat: %s", under.buf.String())
	}
}
