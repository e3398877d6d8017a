package realtime

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func fixedStatus(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func strptr(s string) *string { return &s }

func TestWaitReturnsImmediatelyWithoutLastStatus(t *testing.T) {
	start := time.Now()
	status, changed, err := WaitForStatusChange(context.Background(), fixedStatus("preparing"), nil, MaxTrackTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || status != "preparing" {
		t.Errorf("status=%s changed=%v, mau preparing/true", status, changed)
	}
	if time.Since(start) > time.Second {
		t.Error("panggilan pertama harusnya langsung balik")
	}
}

func TestWaitReadyPriorityWake(t *testing.T) {
	// Status "ready" selalu langsung dibalas walau polling belum mulai
	start := time.Now()
	status, changed, err := WaitForStatusChange(context.Background(), fixedStatus("ready"), strptr("preparing"), MaxTrackTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || status != "ready" {
		t.Errorf("status=%s changed=%v, mau ready/true", status, changed)
	}
	if time.Since(start) > time.Second {
		t.Error("status ready harusnya langsung balik tanpa nunggu timeout")
	}
}

func TestWaitImmediateOnAlreadyChanged(t *testing.T) {
	status, changed, err := WaitForStatusChange(context.Background(), fixedStatus("picked_up"), strptr("preparing"), MaxTrackTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || status != "picked_up" {
		t.Errorf("status=%s changed=%v, mau picked_up/true", status, changed)
	}
}

func TestWaitTimesOutWithoutChange(t *testing.T) {
	start := time.Now()
	status, changed, err := WaitForStatusChange(context.Background(), fixedStatus("confirmed"), strptr("confirmed"), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("changed=true padahal status tidak berubah")
	}
	if status != "confirmed" {
		t.Errorf("status=%s, mau snapshot terakhir confirmed", status)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("wait %v, mau sekitar 50ms", elapsed)
	}
}

func TestWaitPicksUpChangeDuringPoll(t *testing.T) {
	calls := 0
	fetch := func() (string, error) {
		calls++
		if calls >= 2 {
			return "preparing", nil
		}
		return "confirmed", nil
	}

	status, changed, err := WaitForStatusChange(context.Background(), fetch, strptr("confirmed"), MaxTrackTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || status != "preparing" {
		t.Errorf("status=%s changed=%v, mau preparing/true", status, changed)
	}
}

func TestWaitNotFoundIsTerminal(t *testing.T) {
	fetch := func() (string, error) { return "", sql.ErrNoRows }

	_, _, err := WaitForStatusChange(context.Background(), fetch, nil, MaxTrackTimeout)
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, mau sql.ErrNoRows", err)
	}
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, changed, err := WaitForStatusChange(ctx, fixedStatus("confirmed"), strptr("confirmed"), MaxTrackTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("changed=true setelah context batal")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("wait tidak berhenti waktu context batal")
	}
}

func TestClampTrackTimeout(t *testing.T) {
	cases := []struct {
		in   int
		want time.Duration
	}{
		{0, DefaultTrackTimeout},
		{-5, DefaultTrackTimeout},
		{10, 10 * time.Second},
		{60, 60 * time.Second},
		{120, MaxTrackTimeout},
	}

	for _, tc := range cases {
		if got := ClampTrackTimeout(tc.in); got != tc.want {
			t.Errorf("ClampTrackTimeout(%d) = %v, mau %v", tc.in, got, tc.want)
		}
	}
}
